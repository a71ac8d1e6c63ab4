package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML reduces an HTML fragment to newline-separated plain text.
func StripHTML(content string) string {
	if content == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return CleanText(content)
	}

	var lines []string
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		collectText(s, &lines)
	})
	if len(lines) == 0 {
		if t := CleanText(doc.Text()); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

func collectText(s *goquery.Selection, lines *[]string) {
	if goquery.NodeName(s) == "#text" {
		if t := CleanText(s.Text()); t != "" {
			*lines = append(*lines, t)
		}
		return
	}
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		collectText(c, lines)
	})
}

// CleanText collapses whitespace (including non-breaking spaces) and trims.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
