// Package policy resolves how deep and how far back a scrape run goes.
// An initial run backfills a wide historical window; a regular run keeps to
// recent pages only.
package policy

import (
	"fmt"
	"time"

	"aujobs-engine/internal/config"
)

// RunPolicy is derived per source at orchestrator construction and never
// stored.
type RunPolicy struct {
	MaxPages      int
	RecencyWindow time.Duration
	InitialRun    bool
}

// RecencyDays is the window rounded to whole days, as listing URLs expect.
func (p RunPolicy) RecencyDays() int {
	return int(p.RecencyWindow / (24 * time.Hour))
}

// Resolve computes the policy for one source. Per-source overrides beat the
// global defaults; a missing or non-positive required value is a fatal
// configuration error.
func Resolve(source string, cfg config.Config) (RunPolicy, error) {
	if cfg.Scrape.MaxPages <= 0 {
		return RunPolicy{}, fmt.Errorf("policy: scrape.max_pages must be > 0 (got %d)", cfg.Scrape.MaxPages)
	}
	if cfg.Scrape.DaysFromPosted <= 0 || cfg.Scrape.InitialDaysFromPosted <= 0 {
		return RunPolicy{}, fmt.Errorf("policy: recency windows must be > 0 (regular %d, initial %d)",
			cfg.Scrape.DaysFromPosted, cfg.Scrape.InitialDaysFromPosted)
	}

	pol := RunPolicy{InitialRun: cfg.Scrape.InitialRun}

	if cfg.Scrape.InitialRun {
		pol.MaxPages = cfg.Scrape.MaxPages
		pol.RecencyWindow = time.Duration(cfg.Scrape.InitialDaysFromPosted) * 24 * time.Hour
	} else {
		pol.MaxPages = cfg.Scrape.MaxPages
		pol.RecencyWindow = time.Duration(cfg.Scrape.DaysFromPosted) * 24 * time.Hour
	}

	switch source {
	case "prosple":
		if !cfg.Scrape.InitialRun {
			if cfg.Sources.Prosple.RegularMaxPages <= 0 {
				return RunPolicy{}, fmt.Errorf("policy: sources.prosple.regular_max_pages must be > 0 (got %d)",
					cfg.Sources.Prosple.RegularMaxPages)
			}
			pol.MaxPages = cfg.Sources.Prosple.RegularMaxPages
		}
	case "adzuna":
		hours := cfg.Sources.Adzuna.HoursOld
		if cfg.Scrape.InitialRun {
			hours = cfg.Sources.Adzuna.InitialHoursOld
		}
		if hours <= 0 {
			return RunPolicy{}, fmt.Errorf("policy: adzuna hours window must be > 0 (got %d)", hours)
		}
		pol.RecencyWindow = time.Duration(hours) * time.Hour
	}

	return pol, nil
}
