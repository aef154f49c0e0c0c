// Package dedup detects the same real-world event ingested from multiple
// sources or listings. Matching works on canonical keys so that cosmetic
// differences in casing, accents and punctuation do not defeat it.
package dedup

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dancepulse/dancepulse/internal/models"
)

var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonicalize lowercases, folds diacritics, strips punctuation and
// collapses runs of whitespace. The result is stable under repeated
// application, so keys can be recomputed from stored values.
func Canonicalize(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(foldTransform, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			// Punctuation becomes whitespace so hyphenated words still
			// tokenize ("pe-de-serra" -> "pe de serra").
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// truncate limits a canonical value to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// CanonicalKey derives the cross-source identity key for an event. Keys are
// tried in order of reliability: the provider's native id, then the listing
// URL, then a composite of name, venue and day.
func CanonicalKey(ev *models.Event) string {
	if ev.ProviderID != "" {
		return "pid:" + ev.ProviderID
	}
	if url := canonicalURL(ev.SourceURL); url != "" {
		return "url:" + url
	}
	return fmt.Sprintf("nvd:%s|%s|%s",
		truncate(Canonicalize(ev.Name), 40),
		truncate(Canonicalize(ev.Venue), 40),
		ev.EventDay.Format("2006-01-02"))
}

// canonicalURL strips the scheme, a leading "www." and any query string or
// fragment, so tracking parameters do not split identical listings.
func canonicalURL(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}
	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, "/")
}
