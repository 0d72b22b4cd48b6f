package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowedRe = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	separatorRe  = regexp.MustCompile(`[\s_-]+`)
)

// Make lowercases s, strips accents and joins words with single hyphens.
func Make(s string) string {
	folded := foldAccents(strings.ToLower(strings.TrimSpace(s)))
	folded = disallowedRe.ReplaceAllString(folded, "")
	folded = separatorRe.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-")
}

// Or returns Make(preferred), falling back to Make(fallback) when preferred is blank.
func Or(preferred, fallback string) string {
	if s := Make(preferred); s != "" {
		return s
	}
	return Make(fallback)
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
