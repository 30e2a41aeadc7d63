// Package textnorm folds user text into a comparable form: lower case,
// no diacritics, single spaces.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, removes combining marks and collapses whitespace.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Fingerprint identifies a logical message from a phone for deduplication.
func Fingerprint(phone, text string) string {
	return phone + "|" + Normalize(text)
}

// ContainsAny reports whether the normalized haystack contains any of the
// normalized needles. Empty needles are ignored.
func ContainsAny(haystack string, needles []string) bool {
	h := Normalize(haystack)
	for _, n := range needles {
		n = Normalize(n)
		if n != "" && strings.Contains(h, n) {
			return true
		}
	}
	return false
}

// DigitsOnly strips every non-digit rune.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
