package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks every numeric the scrape policy depends on. A bad value
// here is a fatal startup error, never retried at runtime.
func Validate(cfg Config) error {
	var errs []string

	if len(cfg.Scrape.SearchKeywords) == 0 {
		errs = append(errs, "scrape.search_keywords must have at least 1 term")
	}
	for i, term := range cfg.Scrape.SearchKeywords {
		if strings.TrimSpace(term) == "" {
			errs = append(errs, fmt.Sprintf("scrape.search_keywords[%d] cannot be empty", i))
		}
	}
	if cfg.App.RunIntervalMinutes < 0 {
		errs = append(errs, "app.run_interval_minutes cannot be negative")
	}
	if cfg.Scrape.MaxPages <= 0 {
		errs = append(errs, "scrape.max_pages must be > 0")
	}
	if cfg.Scrape.DaysFromPosted <= 0 {
		errs = append(errs, "scrape.days_from_posted must be > 0")
	}
	if cfg.Scrape.InitialDaysFromPosted <= 0 {
		errs = append(errs, "scrape.initial_days_from_posted must be > 0")
	}
	if cfg.Scrape.InitialDaysFromPosted < cfg.Scrape.DaysFromPosted {
		errs = append(errs, "scrape.initial_days_from_posted must be >= scrape.days_from_posted")
	}
	if cfg.Scrape.Concurrency <= 0 {
		errs = append(errs, "scrape.concurrency must be > 0")
	}
	if cfg.Scrape.RequestsPerSecond <= 0 {
		errs = append(errs, "scrape.requests_per_second must be > 0")
	}
	if cfg.Scrape.RequestBurst < 1 {
		errs = append(errs, "scrape.request_burst must be >= 1")
	}

	if cfg.Sources.Prosple.Enabled {
		if cfg.Sources.Prosple.ItemsPerPage <= 0 {
			errs = append(errs, "sources.prosple.items_per_page must be > 0")
		}
		if cfg.Sources.Prosple.RegularMaxPages <= 0 {
			errs = append(errs, "sources.prosple.regular_max_pages must be > 0")
		}
	}

	if cfg.Sources.GradConnection.Enabled && len(cfg.Sources.GradConnection.Keywords) == 0 {
		errs = append(errs, "sources.gradconnection.keywords must have at least 1 term when enabled")
	}

	if cfg.Sources.Adzuna.Enabled {
		if cfg.Sources.Adzuna.ResultsPerPage <= 0 {
			errs = append(errs, "sources.adzuna.results_per_page must be > 0")
		}
		if cfg.Sources.Adzuna.ResultsWanted <= 0 {
			errs = append(errs, "sources.adzuna.results_wanted must be > 0")
		}
		if cfg.Sources.Adzuna.ResultsWantedTotal <= 0 {
			errs = append(errs, "sources.adzuna.results_wanted_total must be > 0")
		}
		if cfg.Sources.Adzuna.TermConcurrency <= 0 {
			errs = append(errs, "sources.adzuna.term_concurrency must be > 0")
		}
		if cfg.Sources.Adzuna.HoursOld <= 0 {
			errs = append(errs, "sources.adzuna.hours_old must be > 0")
		}
		if cfg.Sources.Adzuna.InitialHoursOld <= 0 {
			errs = append(errs, "sources.adzuna.initial_hours_old must be > 0")
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}
