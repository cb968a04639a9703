package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s and strips diacritics, so "Élément" and "element"
// compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, cases.Lower(language.French).String(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// excerpt returns "..." + up to radius runes either side of the first
// occurrence of the normalized query in text + "...". It returns "" when
// the query does not occur.
func excerpt(text, query string, radius int) string {
	// Map every normalized rune back to the source rune it came from.
	src := []rune(text)
	var normalized []rune
	var origin []int
	for i, r := range src {
		for _, n := range Normalize(string(r)) {
			normalized = append(normalized, n)
			origin = append(origin, i)
		}
	}

	idx := strings.Index(string(normalized), query)
	if idx < 0 {
		return ""
	}
	at := len([]rune(string(normalized)[:idx]))
	qlen := len([]rune(query))

	startN := max(at-radius, 0)
	endN := min(at+qlen+radius, len(normalized))
	start := origin[startN]
	end := len(src)
	if endN < len(normalized) {
		end = origin[endN]
	}
	return "..." + string(src[start:end]) + "..."
}
