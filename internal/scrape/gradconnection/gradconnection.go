// Package gradconnection scrapes au.gradconnection.com. The site mixes job
// postings with event campaigns on the same listing pages; events are
// detected on the detail page and dropped.
package gradconnection

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"aujobs-engine/internal/config"
	"aujobs-engine/internal/domain"
	"aujobs-engine/internal/extract"
	"aujobs-engine/internal/policy"
	"aujobs-engine/internal/salary"
	"aujobs-engine/internal/scrape/util"
)

const baseURL = "https://au.gradconnection.com"

// ErrEventPosting marks a detail page advertising an event rather than a job.
var ErrEventPosting = errors.New("event posting, not a job")

type Source struct {
	terms []string
}

func New(cfg config.Config) *Source {
	terms := cfg.Sources.GradConnection.Keywords
	if len(terms) == 0 {
		terms = cfg.Scrape.SearchKeywords
	}
	return &Source{terms: terms}
}

func (s *Source) Name() string { return "gradconnection" }

func (s *Source) Terms() []string { return s.terms }

func (s *Source) ListingURL(term string, page int, _ policy.RunPolicy) string {
	return fmt.Sprintf("%s/jobs/australia/?title=%s&page=%d", baseURL, url.QueryEscape(term), page)
}

// ExtractLinks collects posting links from listing cards. A "notify-me" card
// means the real results are exhausted, so the page is reported as empty to
// end the term.
func (s *Source) ExtractLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var links []string
	exhausted := false
	doc.Find("a.box-header-title").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		if strings.Contains(href, "notifyme") || strings.Contains(href, "notify-me") {
			exhausted = true
			return false
		}
		links = append(links, util.AbsoluteURL(baseURL, href))
		return true
	})
	if exhausted {
		return nil, nil
	}
	return links, nil
}

func (s *Source) ExtractDetail(html, jobURL string) (domain.JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.JobPosting{}, fmt.Errorf("parse detail: %w", err)
	}
	if isEventPosting(doc) {
		return domain.JobPosting{}, ErrEventPosting
	}

	desc := description(doc)
	job := domain.JobPosting{
		Title:       textOr(doc, "h1.employers-profile-h1", "Unknown Title"),
		Company:     textOr(doc, "h1.employers-panel-title", "Unknown Company"),
		Description: desc,
		Locations:   extract.NormalizeLocations(locations(doc)),
		SourceURLs:  []string{jobURL},
		Platforms:   []string{s.Name()},
		Salary:      extractSalary(doc, desc),
		PostedAt:    extract.ISODate(boxContentValue(doc, "posted")),
		ClosingDate: closingDate(doc),
	}
	return job, nil
}

func isEventPosting(doc *goquery.Document) bool {
	event := false
	doc.Find("button").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(sel.Text()), "sign up to event") {
			event = true
			return false
		}
		return true
	})
	if event {
		return true
	}
	if v := boxContentValue(doc, "job type"); strings.Contains(strings.ToLower(v), "event") {
		return true
	}
	if v := overviewValue(doc, "Job Type"); strings.Contains(strings.ToLower(v), "event") {
		return true
	}
	return false
}

func locations(doc *goquery.Document) []string {
	if v := overviewValue(doc, "Location"); v != "" {
		return []string{v}
	}
	if v := boxContentValue(doc, "location"); v != "" {
		v = strings.TrimSpace(strings.ReplaceAll(v, "...show more", ""))
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return []string{"Australia"}
}

func extractSalary(doc *goquery.Document, desc string) *domain.Salary {
	if v := overviewValue(doc, "Salary"); v != "" {
		if sal := salary.Extract(v); sal != nil {
			return sal
		}
	}
	return salary.Extract(desc)
}

func description(doc *goquery.Document) string {
	for _, sel := range []string{"div.campaign-content-container", "div.job-description-container", "body"} {
		node := doc.Find(sel)
		if node.Length() == 0 {
			continue
		}
		raw, err := goquery.OuterHtml(node)
		if err != nil {
			continue
		}
		return extract.StripHTML(raw)
	}
	return ""
}

func closingDate(doc *goquery.Document) string {
	for _, label := range []string{"deadline", "closing"} {
		if v := boxContentValue(doc, label); v != "" {
			return extract.ParseLooseDate(v)
		}
	}
	return ""
}

// boxContentValue reads a labelled "<li><strong>Label</strong> value" entry
// from the posting summary list. Label match is case-insensitive.
func boxContentValue(doc *goquery.Document, label string) string {
	var value string
	doc.Find("ul.box-content li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		strong := li.Find("strong").First()
		if strong.Length() == 0 {
			return true
		}
		if !strings.Contains(strings.ToLower(strong.Text()), label) {
			return true
		}
		value = strings.TrimSpace(strings.Replace(li.Text(), strong.Text(), "", 1))
		return false
	})
	return value
}

// overviewValue reads a dt/dd pair from the job overview panel.
func overviewValue(doc *goquery.Document, label string) string {
	var value string
	doc.Find("div.job-overview-container dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		if !strings.Contains(dt.Text(), label) {
			return true
		}
		value = strings.TrimSpace(dt.Next().Text())
		return false
	})
	return value
}

func textOr(doc *goquery.Document, selector, fallback string) string {
	text := strings.TrimSpace(doc.Find(selector).First().Text())
	if text == "" {
		return fallback
	}
	return text
}
