package pubmed

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pbmd/forgescan/internal/dates"
)

// Article is the metadata forgescan keeps for one PubMed record.
type Article struct {
	PMID     string `json:"pmid"`
	PubDate  string `json:"pub_date"`
	DOI      string `json:"doi"`
	Journal  string `json:"journal"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// Missing lists the fields that could not be extracted.
func (a Article) Missing() []string {
	var missing []string

	for _, f := range []struct{ name, value string }{
		{"abstract", a.Abstract},
		{"publication date", a.PubDate},
		{"title", a.Title},
		{"journal", a.Journal},
		{"doi", a.DOI},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}

	return missing
}

type articleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
	Data     pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	DateCompleted *partDate `xml:"DateCompleted"`
	PMID          string    `xml:"PMID"`
	Article       article   `xml:"Article"`
}

type article struct {
	Journal      journal    `xml:"Journal"`
	Title        richText   `xml:"ArticleTitle"`
	Abstract     []richText `xml:"Abstract>AbstractText"`
	ELocationIDs []typedID  `xml:"ELocationID"`
	ArticleDates []partDate `xml:"ArticleDate"`
}

type journal struct {
	Title   string `xml:"Title"`
	PubDate *struct {
		partDate
		MedlineDate string `xml:"MedlineDate"`
	} `xml:"JournalIssue>PubDate"`
}

type partDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

func (d *partDate) iso() (string, bool) {
	if d == nil {
		return "", false
	}

	s, err := dates.FromParts(d.Year, d.Month, d.Day)
	if err != nil {
		return "", false
	}

	return s, true
}

type pubmedData struct {
	ArticleIDs []typedID `xml:"ArticleIdList>ArticleId"`
}

type typedID struct {
	IDType  string `xml:"IdType,attr"`
	EIDType string `xml:"EIdType,attr"`
	Value   string `xml:",chardata"`
}

// richText collects the character data of an element and all its
// descendants, so inline markup such as <i> or <sup> does not hide text.
type richText string

func (t *richText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var chunks []string

	depth := 0

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch tk := tok.(type) {
		case xml.CharData:
			chunks = append(chunks, string(tk))
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				*t = richText(collapseSpace(strings.Join(chunks, " ")))
				return nil
			}

			depth--
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// candidate is one step of a fallback chain: a named location in the record
// and the function reading it.
type candidate struct {
	extract func(*pubmedArticle) (string, bool)
	path    string
}

// firstOf returns the value of the first candidate that yields one, along
// with the path it came from.
func firstOf(a *pubmedArticle, chain []candidate) (string, string) {
	for _, c := range chain {
		if v, ok := c.extract(a); ok && v != "" {
			return v, c.path
		}
	}

	return "", ""
}

var pubDateChain = []candidate{
	{
		path: "MedlineCitation/Article/ArticleDate",
		extract: func(a *pubmedArticle) (string, bool) {
			for i := range a.Citation.Article.ArticleDates {
				if s, ok := a.Citation.Article.ArticleDates[i].iso(); ok {
					return s, true
				}
			}

			return "", false
		},
	},
	{
		path: "MedlineCitation/Article/Journal/JournalIssue/PubDate",
		extract: func(a *pubmedArticle) (string, bool) {
			if a.Citation.Article.Journal.PubDate == nil {
				return "", false
			}

			return a.Citation.Article.Journal.PubDate.iso()
		},
	},
	{
		path: "MedlineCitation/DateCompleted",
		extract: func(a *pubmedArticle) (string, bool) {
			return a.Citation.DateCompleted.iso()
		},
	},
	{
		path: "MedlineCitation/Article/Journal/JournalIssue/PubDate/MedlineDate",
		extract: func(a *pubmedArticle) (string, bool) {
			if a.Citation.Article.Journal.PubDate == nil {
				return "", false
			}

			s := dates.ISO(a.Citation.Article.Journal.PubDate.MedlineDate)

			return s, s != ""
		},
	},
}

var doiChain = []candidate{
	{
		path: "PubmedData/ArticleIdList/ArticleId[@IdType=doi]",
		extract: func(a *pubmedArticle) (string, bool) {
			return findTyped(a.Data.ArticleIDs, func(id typedID) string { return id.IDType })
		},
	},
	{
		path: "MedlineCitation/Article/ELocationID[@EIdType=doi]",
		extract: func(a *pubmedArticle) (string, bool) {
			return findTyped(a.Citation.Article.ELocationIDs, func(id typedID) string { return id.EIDType })
		},
	},
}

func findTyped(ids []typedID, kind func(typedID) string) (string, bool) {
	for _, id := range ids {
		if strings.EqualFold(kind(id), "doi") {
			if v := strings.TrimSpace(id.Value); v != "" {
				return v, true
			}
		}
	}

	return "", false
}

func (a *pubmedArticle) toArticle() Article {
	abstract := make([]string, 0, len(a.Citation.Article.Abstract))
	for _, part := range a.Citation.Article.Abstract {
		if part != "" {
			abstract = append(abstract, string(part))
		}
	}

	pubDate, _ := firstOf(a, pubDateChain)
	doi, _ := firstOf(a, doiChain)

	return Article{
		PMID:     strings.TrimSpace(a.Citation.PMID),
		PubDate:  pubDate,
		DOI:      doi,
		Journal:  collapseSpace(a.Citation.Article.Journal.Title),
		Title:    string(a.Citation.Article.Title),
		Abstract: strings.Join(abstract, " "),
	}
}

// ParseArticles decodes an EFetch PubmedArticleSet document.
func ParseArticles(data []byte) ([]Article, error) {
	var set articleSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse PubMed XML: %w", err)
	}

	articles := make([]Article, 0, len(set.Articles))
	for i := range set.Articles {
		articles = append(articles, set.Articles[i].toArticle())
	}

	return articles, nil
}
