// Package seek scrapes seek.com.au search results. Seek renders its detail
// pages with stable data-automation attributes, so extraction keys off those
// rather than the obfuscated class names.
package seek

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"aujobs-engine/internal/config"
	"aujobs-engine/internal/domain"
	"aujobs-engine/internal/extract"
	"aujobs-engine/internal/policy"
	"aujobs-engine/internal/salary"
)

const baseURL = "https://www.seek.com.au"

type Source struct {
	terms []string
	now   func() time.Time
}

func New(cfg config.Config) *Source {
	return &Source{terms: cfg.Scrape.SearchKeywords, now: time.Now}
}

func (s *Source) Name() string { return "seek" }

func (s *Source) Terms() []string { return s.terms }

// ListingURL builds the search URL: terms become hyphenated slugs and the
// daterange parameter carries the run policy's recency window in days.
func (s *Source) ListingURL(term string, page int, pol policy.RunPolicy) string {
	slug := strings.ReplaceAll(strings.TrimSpace(term), " ", "-")
	return fmt.Sprintf("%s/%s-jobs?page=%d&daterange=%d", baseURL, slug, page, pol.RecencyDays())
}

func (s *Source) ExtractLinks(html string) ([]string, error) {
	if strings.Contains(html, "No matching search results") {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var links []string
	doc.Find(`a[data-automation="jobTitle"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = baseURL + strings.SplitN(href, "?", 2)[0]
		}
		links = append(links, href)
	})
	return links, nil
}

func (s *Source) ExtractDetail(html, url string) (domain.JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.JobPosting{}, fmt.Errorf("parse detail: %w", err)
	}

	job := domain.JobPosting{
		Title:       textOr(doc, `h1[data-automation="job-detail-title"]`, "Unknown Title"),
		Company:     textOr(doc, `span[data-automation="advertiser-name"]`, "Unknown Company"),
		Description: description(doc),
		Locations:   extract.NormalizeLocations([]string{textOr(doc, `span[data-automation="job-detail-location"]`, "Australia")}),
		SourceURLs:  []string{url},
		Platforms:   []string{s.Name()},
		Salary:      salary.Extract(textOr(doc, `span[data-automation="job-detail-salary"]`, "")),
		PostedAt:    s.postedDate(doc),
	}
	return job, nil
}

func description(doc *goquery.Document) string {
	sel := doc.Find(`div[data-automation="jobAdDetails"]`)
	if sel.Length() == 0 {
		sel = doc.Find("body")
	}
	raw, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	return extract.StripHTML(raw)
}

// postedDate scans span text for the "Posted Xd ago" stamp instead of pinning
// the minified class the stamp happens to carry this week.
func (s *Source) postedDate(doc *goquery.Document) string {
	var posted string
	doc.Find("span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if strings.HasPrefix(text, "Posted") && strings.Contains(text, "ago") {
			posted = extract.PostedDateFromRelative(text, s.now())
			return false
		}
		return true
	})
	return posted
}

func textOr(doc *goquery.Document, selector, fallback string) string {
	text := strings.TrimSpace(doc.Find(selector).First().Text())
	if text == "" {
		return fallback
	}
	return text
}
