package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// 12-hour clock, tolerant of "7 pm", "7:00 p.m.", "7.00 PM", "7 p. m.".
	twelveHourRe = regexp.MustCompile(`\b(\d{1,2})(?:[:.](\d{2}))?\s*([ap])\.?\s*m\.?`)

	// 24-hour clock, "19:30" or "19h30" / "19h".
	twentyFourHourRe = regexp.MustCompile(`\b(\d{1,2})(?:[:h](\d{2})|h)\b`)

	// Range separators: en dash, em dash, hyphen between spaces, and the
	// textual forms in the three languages.
	rangeSeparatorRe = regexp.MustCompile(`\s*(?:[–—]|\s-\s|\bto\b|\buntil\b|\bhasta\b|\bate\b)\s*`)

	// Bare-hour range where only the right side carries the meridiem:
	// "7 – 9 pm". Captured so the left side can inherit the marker.
	meridiemRangeRe = regexp.MustCompile(`\b(\d{1,2}(?:[:.]\d{2})?)\s*[–—-]\s*(\d{1,2}(?:[:.]\d{2})?)\s*([ap])\.?\s*m\.?`)

	multiSpaceRe = regexp.MustCompile(`\s+`)
	punctRe      = regexp.MustCompile(`[,;!?()\[\]"']`)

	foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// fold lowercases a string and strips diacritics so that "Sáb" and "março"
// match the folded lookup tables.
func fold(s string) string {
	folded, _, err := transform.String(foldTransform, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Normalize cleans a raw provider date string into a form the extraction
// passes can work on: folded, weekday prefix removed, month names mapped to
// marked numeric tokens, connector words and punctuation dropped, range
// suffix resolved to its start segment.
func Normalize(s string) string {
	s = fold(s)
	s = resolveRange(s)
	s = stripLeadingWeekday(s)
	s = mapMonthNames(s)
	s = punctRe.ReplaceAllString(s, " ")
	s = dropConnectorWords(s)
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

// resolveRange reduces a date/time range to its starting segment. When only
// the right side of an hour range carries an am/pm marker ("7 – 9 pm"), the
// marker is copied onto the left side before the cut so the start time stays
// unambiguous.
func resolveRange(s string) string {
	s = meridiemRangeRe.ReplaceAllString(s, "$1 ${3}m – $2 ${3}m")
	if loc := rangeSeparatorRe.FindStringIndex(s); loc != nil {
		left := strings.TrimSpace(s[:loc[0]])
		if left != "" {
			return left
		}
	}
	return s
}

// stripLeadingWeekday removes a weekday name or abbreviation at the head of
// the string, together with any trailing "." or ",".
func stripLeadingWeekday(s string) string {
	trimmed := strings.TrimSpace(s)
	end := strings.IndexFunc(trimmed, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	token := trimmed
	if end >= 0 {
		token = trimmed[:end]
	}
	if weekdayNames[token] {
		rest := strings.TrimLeft(trimmed[len(token):], "., \t")
		return rest
	}
	return trimmed
}

// mapMonthNames replaces month names and abbreviations with a marked token
// ("mai" -> "m5") so later extraction can tell months from day numbers
// regardless of token order.
func mapMonthNames(s string) string {
	var b strings.Builder
	for _, tok := range strings.Fields(s) {
		bare := strings.Trim(tok, ".,")
		if m, ok := monthNumbers[bare]; ok {
			tok = fmt.Sprintf("m%d", m)
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	return b.String()
}

// dropConnectorWords removes filler tokens ("de", "at", "a las") that would
// otherwise confuse numeric extraction.
func dropConnectorWords(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, tok := range fields {
		if connectorWords[strings.Trim(tok, ".")] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// EndTime finds the closing time of a range such as "7:00 – 9:00 PM" or
// "20:00 – 23:00". It reports false when the string has no range or the
// right-hand side carries no recognizable time.
func EndTime(raw string) (hour, minute int, ok bool) {
	s := fold(raw)
	s = meridiemRangeRe.ReplaceAllString(s, "$1 ${3}m – $2 ${3}m")
	loc := rangeSeparatorRe.FindStringIndex(s)
	if loc == nil {
		return 0, 0, false
	}
	h, m, found, _ := extractTime(s[loc[1]:])
	return h, m, found
}

// extractTime finds a time-of-day in the (folded, range-resolved) string.
// It prefers the 12-hour form because the 24-hour pattern would also match
// the hour part of "7:00 pm". The returned remainder has the matched time
// text removed so day extraction never mistakes an hour for a day number.
func extractTime(s string) (hour, minute int, found bool, remainder string) {
	if m := twelveHourRe.FindStringSubmatchIndex(s); m != nil {
		h, _ := strconv.Atoi(s[m[2]:m[3]])
		min := 0
		if m[4] >= 0 {
			min, _ = strconv.Atoi(s[m[4]:m[5]])
		}
		meridiem := s[m[6]:m[7]]
		if h >= 1 && h <= 12 && min < 60 {
			if meridiem == "p" && h != 12 {
				h += 12
			}
			if meridiem == "a" && h == 12 {
				h = 0
			}
			return h, min, true, s[:m[0]] + " " + s[m[1]:]
		}
	}

	if m := twentyFourHourRe.FindStringSubmatchIndex(s); m != nil {
		h, _ := strconv.Atoi(s[m[2]:m[3]])
		min := 0
		if m[4] >= 0 {
			min, _ = strconv.Atoi(s[m[4]:m[5]])
		}
		if h < 24 && min < 60 {
			return h, min, true, s[:m[0]] + " " + s[m[1]:]
		}
	}

	return 0, 0, false, s
}
