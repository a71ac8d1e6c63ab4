package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var daysAgoRe = regexp.MustCompile(`(\d+)\+?d`)

// PostedDateFromRelative converts Seek-style relative text ("Posted 2d ago",
// "Posted 30+d ago", "Posted 4h ago") to a YYYY-MM-DD date. Hours and minutes
// count as today; unparsable input defaults to today.
func PostedDateFromRelative(text string, now time.Time) string {
	clean := strings.ToLower(strings.TrimSpace(text))
	clean = strings.ReplaceAll(clean, "posted", "")
	clean = strings.ReplaceAll(clean, "ago", "")
	clean = strings.TrimSpace(clean)

	daysAgo := 0
	if m := daysAgoRe.FindStringSubmatch(clean); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			daysAgo = n
		}
	}
	return now.AddDate(0, 0, -daysAgo).Format("2006-01-02")
}

// ISODate trims an ISO-8601 timestamp to its date part. Returns "" when the
// input does not start with a valid date.
func ISODate(value string) string {
	value = strings.TrimSpace(value)
	if len(value) < 10 {
		return ""
	}
	candidate := value[:10]
	if _, err := time.Parse("2006-01-02", candidate); err != nil {
		return ""
	}
	return candidate
}

// ParseLooseDate handles the "2nd Mar 2026, 5:00 PM" closing-date format used
// by gradconnection alongside plain ISO timestamps.
func ParseLooseDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if d := ISODate(strings.Replace(value, "Z", "+00:00", 1)); d != "" {
		return d
	}
	cleaned := ordinalRe.ReplaceAllString(value, "$1")
	if t, err := time.Parse("2 Jan 2006, 3:04 PM", cleaned); err == nil {
		return t.Format("2006-01-02")
	}
	return ""
}

var ordinalRe = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)
