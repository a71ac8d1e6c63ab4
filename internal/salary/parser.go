// Package salary turns structured salary fields or free-text mentions into
// annualized bounds. Figures outside the plausibility window are treated as
// "no salary" rather than errors.
package salary

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"aujobs-engine/internal/domain"
)

// Salary is conventionally stated early in a posting; numbers further down
// (percentages, years of experience) must not be picked up.
const (
	maxSegments   = 5
	maxWindowSize = 1000
)

const numCore = `(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?`

var (
	rangeRe  = regexp.MustCompile(`(-?)\s*\$?\s*(` + numCore + `)\s*([kK])?\s*(?:[-–—]|\bto\b)\s*(-?)\s*\$?\s*(` + numCore + `)\s*([kK])?`)
	singleRe = regexp.MustCompile(`(-?)\s*\$?\s*(` + numCore + `)\s*([kK]\b)?`)

	segmentRe = regexp.MustCompile(`[.!?\n]+`)

	escapeReplacer = strings.NewReplacer(`\$`, "$", `\-`, "-")
)

// Extract finds a salary mention in free text and annualizes it. It returns
// nil when no plausible figure is found; negative and zero values fall out of
// the plausibility window rather than being rejected up front.
func Extract(text string) *domain.Salary {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = escapeReplacer.Replace(html.UnescapeString(text))
	window := searchWindow(text)

	if m := rangeRe.FindStringSubmatchIndex(window); m != nil {
		interval := DetectInterval(surrounding(window, m[0], m[1]))
		low := parseNumber(group(window, m, 1), group(window, m, 2), group(window, m, 3))
		high := parseNumber(group(window, m, 4), group(window, m, 5), group(window, m, 6))

		// "80-100k": a bare first number next to a k-suffixed second one is
		// itself in thousands.
		if group(window, m, 6) != "" && group(window, m, 3) == "" && low > 0 && low < 1000 {
			low *= 1000
		}

		low *= multiplier(interval)
		high *= multiplier(interval)
		if low > high {
			low, high = high, low
		}
		if inBounds(low) && inBounds(high) {
			return &domain.Salary{AnnualMin: low, AnnualMax: high}
		}
	}

	if m := singleRe.FindStringSubmatchIndex(window); m != nil {
		interval := DetectInterval(surrounding(window, m[0], m[1]))
		value := parseNumber(group(window, m, 1), group(window, m, 2), group(window, m, 3))
		value *= multiplier(interval)
		if inBounds(value) {
			return &domain.Salary{AnnualMin: value, AnnualMax: value}
		}
	}

	return nil
}

// searchWindow limits matching to the first few sentence-like segments or the
// first 1000 characters, whichever is smaller.
func searchWindow(text string) string {
	segments := segmentRe.Split(text, maxSegments+1)
	if len(segments) > maxSegments {
		segments = segments[:maxSegments]
	}
	window := strings.Join(segments, ". ")
	if len(window) > maxWindowSize {
		window = window[:maxWindowSize]
	}
	return window
}

func group(s string, m []int, n int) string {
	if m[2*n] < 0 {
		return ""
	}
	return s[m[2*n]:m[2*n+1]]
}

func parseNumber(sign, digits, k string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0
	}
	if k != "" {
		v *= 1000
	}
	if sign == "-" {
		v = -v
	}
	return v
}

func inBounds(v float64) bool {
	return v >= domain.SalaryFloor && v <= domain.SalaryCeiling
}

func surrounding(text string, start, end int) string {
	lo := start - 50
	if lo < 0 {
		lo = 0
	}
	hi := end + 50
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}
