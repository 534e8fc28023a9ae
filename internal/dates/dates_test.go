package dates

import "testing"

func TestISO(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: "2020-01-01T10:00:00Z", want: "2020-01-01"},
		{in: "2023-05-10T12:00:00.123456+00:00", want: "2023-05-10"},
		{in: "2019-03-15", want: "2019-03-15"},
		{in: "2012/03/19", want: "2012-03-19"},
		{in: "not a date", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ISO(tt.in); got != tt.want {
				t.Errorf("ISO(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromParts(t *testing.T) {
	tests := []struct {
		year, month, day string
		want             string
		wantErr          bool
	}{
		{year: "2023", month: "Jan", day: "01", want: "2023-01-01"},
		{year: "2022", month: "5", day: "17", want: "2022-05-17"},
		{year: "2021", month: "12", day: "3", want: "2021-12-03"},
		{year: "2020", month: "September", day: "09", want: "2020-09-09"},
		{year: "2020", month: "Foo", day: "01", wantErr: true},
		{year: "2020", month: "13", day: "01", wantErr: true},
		{year: "", month: "01", day: "01", wantErr: true},
		{year: "2020", month: "01", day: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.year+"-"+tt.month+"-"+tt.day, func(t *testing.T) {
			got, err := FromParts(tt.year, tt.month, tt.day)
			if tt.wantErr {
				if err == nil {
					t.Errorf("FromParts() = %q, want error", got)
				}

				return
			}

			if err != nil {
				t.Fatalf("FromParts() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("FromParts() = %q, want %q", got, tt.want)
			}
		})
	}
}
