// Package adzuna pulls postings from the Adzuna search API. Unlike the
// browser-driven sources it receives whole structured records, so salary
// reconciliation starts from the API's salary_min/salary_max fields.
package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"aujobs-engine/internal/config"
	"aujobs-engine/internal/domain"
	"aujobs-engine/internal/extract"
	"aujobs-engine/internal/policy"
	"aujobs-engine/internal/salary"
)

const defaultBaseURL = "https://api.adzuna.com"

type Source struct {
	appID      string
	appKey     string
	country    string
	baseURL    string
	httpClient *http.Client

	terms          []string
	resultsPerPage int
	wantPerTerm    int
}

// New builds the API source. Credentials must already be resolved; a missing
// app_id/app_key pair is a configuration error, not a runtime one.
func New(cfg config.Config) (*Source, error) {
	a := cfg.Sources.Adzuna
	if a.AppID == "" || a.AppKey == "" {
		return nil, fmt.Errorf("adzuna: app_id and app_key are required")
	}
	country := a.Country
	if country == "" {
		country = "au"
	}
	return &Source{
		appID:          a.AppID,
		appKey:         a.AppKey,
		country:        country,
		baseURL:        defaultBaseURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		terms:          cfg.Scrape.SearchKeywords,
		resultsPerPage: a.ResultsPerPage,
		wantPerTerm:    a.ResultsWanted,
	}, nil
}

func (s *Source) Name() string { return "adzuna" }

func (s *Source) Terms() []string { return s.terms }

// FetchTerm pages through the API until the per-term target is met or a page
// comes back empty. Every returned posting has passed validation and carries
// its fingerprint.
func (s *Source) FetchTerm(ctx context.Context, term string, pol policy.RunPolicy) ([]domain.JobPosting, error) {
	var out []domain.JobPosting
	for page := 1; len(out) < s.wantPerTerm; page++ {
		results, err := s.searchPage(ctx, term, page, pol)
		if err != nil {
			if len(out) > 0 {
				// Deeper pages failing does not void what we already have.
				return out, nil
			}
			return nil, err
		}
		if len(results) == 0 {
			break
		}
		for _, r := range results {
			job := s.toPosting(r)
			if errs := job.Validate(); len(errs) > 0 {
				continue
			}
			job.EnsureFingerprint()
			out = append(out, job)
			if len(out) >= s.wantPerTerm {
				break
			}
		}
	}
	return out, nil
}

func (s *Source) searchPage(ctx context.Context, term string, page int, pol policy.RunPolicy) ([]result, error) {
	u, err := s.searchURL(term, page, pol)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("adzuna: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adzuna: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("adzuna: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("adzuna: decode response: %w", err)
	}
	return payload.Results, nil
}

func (s *Source) searchURL(term string, page int, pol policy.RunPolicy) (string, error) {
	if term == "" {
		return "", fmt.Errorf("adzuna: search term is required")
	}
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("adzuna: parse base url: %w", err)
	}
	u.Path = path.Join(u.Path, "v1", "api", "jobs", s.country, "search", fmt.Sprint(page))

	maxDaysOld := int(pol.RecencyWindow / (24 * time.Hour))
	if maxDaysOld < 1 {
		maxDaysOld = 1
	}

	values := url.Values{}
	values.Set("app_id", s.appID)
	values.Set("app_key", s.appKey)
	values.Set("what", term)
	values.Set("results_per_page", fmt.Sprint(s.resultsPerPage))
	values.Set("max_days_old", fmt.Sprint(maxDaysOld))
	values.Set("content-type", "application/json")
	u.RawQuery = values.Encode()
	return u.String(), nil
}

func (s *Source) toPosting(r result) domain.JobPosting {
	company := r.Company.DisplayName
	if company == "" {
		company = "Unknown Company"
	}

	sourceURL := r.RedirectURL
	if sourceURL == "" {
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		sourceURL = fmt.Sprintf("https://www.adzuna.com.au/details/%s", id)
	}

	rawLocations := []string{"Australia"}
	if r.Location.DisplayName != "" {
		rawLocations = strings.Split(r.Location.DisplayName, ",")
	}

	var lowPtr, highPtr *float64
	if r.SalaryMin > 0 {
		lowPtr = &r.SalaryMin
	}
	if r.SalaryMax > 0 {
		highPtr = &r.SalaryMax
	}

	desc := extract.CleanText(r.Description)
	job := domain.JobPosting{
		Title:       strings.TrimSpace(r.Title),
		Company:     company,
		Description: desc,
		Locations:   extract.NormalizeLocations(rawLocations),
		SourceURLs:  []string{sourceURL},
		Platforms:   []string{s.Name()},
		Salary:      salary.Reconcile(lowPtr, highPtr, "yearly", desc),
	}
	if r.Created != "" {
		job.PostedAt = extract.ISODate(r.Created)
	}
	return job
}

type searchResponse struct {
	Count   int      `json:"count"`
	Results []result `json:"results"`
}

type result struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Company     companySummary  `json:"company"`
	Location    locationSummary `json:"location"`
	Description string          `json:"description"`
	Created     string          `json:"created"`
	RedirectURL string          `json:"redirect_url"`
	SalaryMin   float64         `json:"salary_min"`
	SalaryMax   float64         `json:"salary_max"`
}

type companySummary struct {
	DisplayName string `json:"display_name"`
}

type locationSummary struct {
	DisplayName string `json:"display_name"`
}
