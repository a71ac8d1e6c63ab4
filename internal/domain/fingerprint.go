package domain

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fingerprinting uses a normalized hash of company + title. Location is
// deliberately left out of the hash so the same role posted for several
// cities dedups to one record.

var (
	companySuffixRe = regexp.MustCompile(`(?i)\bpty\.?\s*ltd\.?|\blimited\b|\binc\.?|\bcorp\.?|\bllc\.?|\bco\.?`)
	punctRe         = regexp.MustCompile(`[^\w\s]`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// NormalizeIdentity lowercases, folds diacritics, strips company suffixes and
// punctuation, and collapses whitespace.
func NormalizeIdentity(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(text))
	s = foldDiacritics(s)
	s = companySuffixRe.ReplaceAllString(s, "")
	s = punctRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Fingerprint returns the dedup key for a company/title pair: the md5 hex of
// the normalized components joined with "|". Equal inputs modulo case,
// accents, and whitespace always yield equal fingerprints.
func Fingerprint(company, title string) string {
	key := NormalizeIdentity(company) + "|" + NormalizeIdentity(title)
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
