package salary

import (
	"regexp"

	"aujobs-engine/internal/domain"
)

// Pay-interval multipliers for annualization.
const (
	hoursPerYear  = 2080
	daysPerYear   = 260
	weeksPerYear  = 52
	monthsPerYear = 12
)

var (
	hourRe  = regexp.MustCompile(`(?i)\bhour|\bhrs?\b`)
	dayRe   = regexp.MustCompile(`(?i)\bdai?ly\b|\bdays?\b`)
	weekRe  = regexp.MustCompile(`(?i)\bweek|\bwks?\b`)
	monthRe = regexp.MustCompile(`(?i)\bmonth|\bmo\b|\bmths?\b`)
	yearRe  = regexp.MustCompile(`(?i)\byear|\byrs?\b|\bannual|\bannum\b`)
)

// DetectInterval keyword-searches a snippet of text around a salary mention.
// An unstated interval defaults to yearly even when the figure is plausibly
// hourly; downstream consumers rely on that default.
func DetectInterval(window string) string {
	switch {
	case hourRe.MatchString(window):
		return "hourly"
	case dayRe.MatchString(window):
		return "daily"
	case weekRe.MatchString(window):
		return "weekly"
	case monthRe.MatchString(window):
		return "monthly"
	case yearRe.MatchString(window):
		return "yearly"
	default:
		return "yearly"
	}
}

func multiplier(interval string) float64 {
	switch interval {
	case "hourly":
		return hoursPerYear
	case "daily":
		return daysPerYear
	case "weekly":
		return weeksPerYear
	case "monthly":
		return monthsPerYear
	default:
		return 1
	}
}

// Reconcile decides between structured salary fields and the free-text
// fallback. When either structured bound is present the text parser is never
// consulted; a single-sided structured value collapses to both bounds.
func Reconcile(structuredMin, structuredMax *float64, intervalHint, description string) *domain.Salary {
	if structuredMin != nil || structuredMax != nil {
		low := structuredMin
		if low == nil {
			low = structuredMax
		}
		high := structuredMax
		if high == nil {
			high = structuredMin
		}

		mult := multiplier(intervalHint)
		annualMin := *low * mult
		annualMax := *high * mult
		if annualMin > annualMax {
			annualMin, annualMax = annualMax, annualMin
		}

		s := &domain.Salary{AnnualMin: annualMin, AnnualMax: annualMax}
		if !s.Plausible() {
			return nil
		}
		return s
	}

	if description != "" {
		return Extract(description)
	}
	return nil
}
