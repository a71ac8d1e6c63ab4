package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Location is a normalized Australian city/state pair. City falls back to
// "Australia" with an empty state when a posting only names the country.
type Location struct {
	City  string `json:"city"`
	State string `json:"state,omitempty"`
}

func (l Location) String() string {
	if l.State == "" {
		return l.City
	}
	return l.City + ", " + l.State
}

// Salary holds annualized bounds. Both bounds are always present and
// AnnualMin <= AnnualMax; a posting without usable salary data carries a nil
// *Salary instead.
type Salary struct {
	AnnualMin float64 `json:"annual_min"`
	AnnualMax float64 `json:"annual_max"`
}

// Plausibility window for annualized figures. Anything outside is treated as
// a parsing artifact and discarded.
const (
	SalaryFloor   = 10
	SalaryCeiling = 1_000_000
)

func (s Salary) Plausible() bool {
	return s.AnnualMin >= SalaryFloor && s.AnnualMax <= SalaryCeiling && s.AnnualMin <= s.AnnualMax
}

// JobPosting is the normalized output unit handed to the store. One posting is
// built per successfully fetched detail page; the scrape core never mutates a
// posting after emitting it.
type JobPosting struct {
	Title       string     `json:"job_title"`
	Company     string     `json:"company"`
	Description string     `json:"description"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	Locations   []Location `json:"locations"`
	SourceURLs  []string   `json:"source_urls"`
	Platforms   []string   `json:"platforms"`
	Salary      *Salary    `json:"salary,omitempty"`
	PostedAt    string     `json:"posted_at,omitempty"`
	ClosingDate string     `json:"closing_date,omitempty"`
}

// EnsureFingerprint derives the dedup key if it has not been set yet.
// Re-fingerprinting an already-fingerprinted posting is a no-op.
func (j *JobPosting) EnsureFingerprint() {
	if j.Fingerprint == "" {
		j.Fingerprint = Fingerprint(j.Company, j.Title)
	}
}

// Validate returns every problem that should keep a posting out of a batch.
func (j *JobPosting) Validate() []error {
	var errs []error
	if strings.TrimSpace(j.Title) == "" {
		errs = append(errs, errors.New("missing job title"))
	}
	if strings.TrimSpace(j.Company) == "" {
		errs = append(errs, errors.New("missing company"))
	}
	if len(j.Locations) == 0 {
		errs = append(errs, errors.New("job must have at least one location"))
	}
	if len(j.SourceURLs) == 0 {
		errs = append(errs, errors.New("job must have at least one source URL"))
	}
	if len(j.Platforms) == 0 {
		errs = append(errs, errors.New("job must have at least one platform"))
	}
	if len(strings.TrimSpace(j.Description)) < 10 {
		errs = append(errs, errors.New("job description must be at least 10 characters"))
	}
	if j.Salary != nil && !j.Salary.Plausible() {
		errs = append(errs, fmt.Errorf("salary bounds out of range: %.0f-%.0f", j.Salary.AnnualMin, j.Salary.AnnualMax))
	}
	return errs
}
