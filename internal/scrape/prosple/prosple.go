// Package prosple scrapes au.prosple.com. Listing pages paginate by start
// offset rather than page number, and detail pages carry a schema.org
// JobPosting JSON-LD block that is preferred over scraping the markup.
package prosple

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"aujobs-engine/internal/config"
	"aujobs-engine/internal/domain"
	"aujobs-engine/internal/extract"
	"aujobs-engine/internal/policy"
	"aujobs-engine/internal/salary"
	"aujobs-engine/internal/scrape/util"
)

const (
	baseURL   = "https://au.prosple.com"
	searchURL = baseURL + "/search-jobs?locations=9692&defaults_applied=1"
)

type Source struct {
	terms        []string
	itemsPerPage int
}

func New(cfg config.Config) *Source {
	return &Source{
		terms:        cfg.Scrape.SearchKeywords,
		itemsPerPage: cfg.Sources.Prosple.ItemsPerPage,
	}
}

func (s *Source) Name() string { return "prosple" }

func (s *Source) Terms() []string { return s.terms }

// ListingURL translates the page number into a start offset. Regular runs
// sort newest-first so fresh postings surface within the shallow page cap.
func (s *Source) ListingURL(term string, page int, pol policy.RunPolicy) string {
	start := (page - 1) * s.itemsPerPage
	u := fmt.Sprintf("%s&keywords=%s&start=%d", searchURL, url.QueryEscape(term), start)
	if !pol.InitialRun {
		u += "&sort=" + url.QueryEscape("newest_opportunities|desc")
	}
	return u
}

func (s *Source) ExtractLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var links []string
	doc.Find(`a[target="_blank"][href^="/graduate-employers/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}
		links = append(links, util.AbsoluteURL(baseURL, href))
	})
	return links, nil
}

func (s *Source) ExtractDetail(html, jobURL string) (domain.JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.JobPosting{}, fmt.Errorf("parse detail: %w", err)
	}

	ld := findJobPostingLD(doc)
	desc := description(doc, ld)

	job := domain.JobPosting{
		Title:       title(doc, ld),
		Company:     company(ld),
		Description: desc,
		Locations:   extract.NormalizeLocations(locations(ld)),
		SourceURLs:  []string{jobURL},
		Platforms:   []string{s.Name()},
		Salary:      extractSalary(ld, desc),
	}
	if ld != nil {
		job.PostedAt = extract.ISODate(ld.DatePosted)
		job.ClosingDate = extract.ISODate(ld.ValidThrough)
	}
	return job, nil
}

// jobPostingLD is the subset of schema.org JobPosting the extractor reads.
type jobPostingLD struct {
	Type         string          `json:"@type"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	DatePosted   string          `json:"datePosted"`
	ValidThrough string          `json:"validThrough"`
	HiringOrg    json.RawMessage `json:"hiringOrganization"`
	JobLocation  json.RawMessage `json:"jobLocation"`
	BaseSalary   json.RawMessage `json:"baseSalary"`
}

func findJobPostingLD(doc *goquery.Document) *jobPostingLD {
	var found *jobPostingLD
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}

		var one jobPostingLD
		if err := json.Unmarshal([]byte(raw), &one); err == nil && one.Type == "JobPosting" {
			found = &one
			return false
		}

		var many []jobPostingLD
		if err := json.Unmarshal([]byte(raw), &many); err == nil {
			for i := range many {
				if many[i].Type == "JobPosting" {
					found = &many[i]
					return false
				}
			}
		}
		return true
	})
	return found
}

func title(doc *goquery.Document, ld *jobPostingLD) string {
	if ld != nil && ld.Title != "" {
		return ld.Title
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return "Unknown Title"
}

func company(ld *jobPostingLD) string {
	if ld != nil && len(ld.HiringOrg) > 0 {
		var org struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(ld.HiringOrg, &org); err == nil && org.Name != "" {
			return org.Name
		}
		var name string
		if err := json.Unmarshal(ld.HiringOrg, &name); err == nil && name != "" {
			return name
		}
	}
	return "Unknown Company"
}

func locations(ld *jobPostingLD) []string {
	if ld == nil || len(ld.JobLocation) == 0 {
		return []string{"Australia"}
	}
	var places []struct {
		Address json.RawMessage `json:"address"`
	}
	if err := json.Unmarshal(ld.JobLocation, &places); err != nil {
		return []string{"Australia"}
	}

	var out []string
	for _, p := range places {
		if len(p.Address) == 0 {
			continue
		}
		var addr struct {
			Locality string `json:"addressLocality"`
		}
		if err := json.Unmarshal(p.Address, &addr); err == nil && addr.Locality != "" {
			out = append(out, addr.Locality)
			continue
		}
		var plain string
		if err := json.Unmarshal(p.Address, &plain); err == nil && plain != "" {
			out = append(out, plain)
		}
	}
	if len(out) == 0 {
		return []string{"Australia"}
	}
	return out
}

// extractSalary prefers the JSON-LD baseSalary block; structured bounds win
// over anything the description says. Text parsing is the last resort.
func extractSalary(ld *jobPostingLD, desc string) *domain.Salary {
	if ld == nil || len(ld.BaseSalary) == 0 {
		return salary.Extract(desc)
	}

	var base struct {
		Value    json.RawMessage `json:"value"`
		UnitText string          `json:"unitText"`
	}
	if err := json.Unmarshal(ld.BaseSalary, &base); err != nil {
		// baseSalary given as a bare string
		var text string
		if err := json.Unmarshal(ld.BaseSalary, &text); err == nil {
			if s := salary.Extract(text); s != nil {
				return s
			}
		}
		return salary.Extract(desc)
	}
	interval := salary.DetectInterval(base.UnitText)

	var bounds struct {
		MinValue json.RawMessage `json:"minValue"`
		MaxValue json.RawMessage `json:"maxValue"`
	}
	if err := json.Unmarshal(base.Value, &bounds); err == nil {
		low := ldNumber(bounds.MinValue)
		high := ldNumber(bounds.MaxValue)
		if low != nil || high != nil {
			return salary.Reconcile(low, high, interval, desc)
		}
	}

	if amount := ldNumber(base.Value); amount != nil {
		return salary.Reconcile(amount, amount, interval, desc)
	}
	var text string
	if err := json.Unmarshal(base.Value, &text); err == nil {
		if s := salary.Extract(text); s != nil {
			return s
		}
	}
	return salary.Extract(desc)
}

// ldNumber accepts a JSON number or a numeric string with thousands commas.
func ldNumber(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return &v
		}
	}
	return nil
}

func description(doc *goquery.Document, ld *jobPostingLD) string {
	if ld != nil && ld.Description != "" {
		return extract.StripHTML(ld.Description)
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return ""
	}
	raw, err := goquery.OuterHtml(body)
	if err != nil {
		return ""
	}
	return extract.StripHTML(raw)
}
