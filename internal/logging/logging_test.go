package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		want    log.Level
	}{
		{name: "default", want: log.InfoLevel},
		{name: "verbose", verbose: true, want: log.DebugLevel},
		{name: "quiet", quiet: true, want: log.WarnLevel},
		{name: "quiet wins", verbose: true, quiet: true, want: log.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Level(tt.verbose, tt.quiet); got != tt.want {
				t.Errorf("Level(%v, %v) = %v, want %v", tt.verbose, tt.quiet, got, tt.want)
			}
		})
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, log.InfoLevel)

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message written at info level: %q", buf.String())
	}

	logger.Info("shown", "pmid", "12345")
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "12345") {
		t.Errorf("info message missing from output: %q", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, log.DebugLevel)

	ctx := WithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the stored logger")
	}

	if got := FromContext(context.Background()); got != log.Default() {
		t.Error("FromContext without a logger should return log.Default()")
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, log.InfoLevel)

	NewProgress(logger).Done("Fetched 3 articles")

	out := buf.String()
	if !strings.Contains(out, "Fetched 3 articles (") {
		t.Errorf("progress output = %q, want message with elapsed time", out)
	}
}
