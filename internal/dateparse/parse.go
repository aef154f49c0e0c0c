// Package dateparse normalizes and parses the date/time strings emitted by
// the upstream event providers. The inputs mix languages (English, Spanish,
// Portuguese), weekday prefixes, month abbreviations, 12- and 24-hour
// clocks, and range suffixes; the parser reduces them to a calendar day plus
// an optional start time.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Result is a parsed day with an optional time of day. HasTime reports
// whether a time token was actually present in the input: a parsed midnight
// is carried as a real 00:00 time, it is never the encoding for "no time".
type Result struct {
	Day     time.Time // midnight UTC on the event's calendar day
	Hour    int
	Minute  int
	HasTime bool
}

// StartTime renders the parsed time as "HH:MM", or "" when no time was
// present.
func (r Result) StartTime() string {
	if !r.HasTime {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)

	// Marked month tokens produced by mapMonthNames: "m5 15" (month day)
	// and "15 m5" (day month).
	monthDayRe = regexp.MustCompile(`\bm(\d{1,2})\s+(\d{1,2})\b`)
	dayMonthRe = regexp.MustCompile(`\b(\d{1,2})\s+m(\d{1,2})\b`)

	// Lone marked month, for inputs like "mai. 2025" with the day elsewhere.
	loneMonthRe = regexp.MustCompile(`\bm(\d{1,2})\b`)
	loneDayRe   = regexp.MustCompile(`\b(\d{1,2})\b`)
	yearRe      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// ParseDayTime parses a provider date string into a calendar day and
// optional start time. ref supplies the year when the input omits one and
// anchors the past/future heuristic; it must be the single run clock, not a
// fresh time.Now per record.
func ParseDayTime(s string, ref time.Time) (Result, error) {
	if s == "" {
		return Result{}, fmt.Errorf("empty date string")
	}

	folded := fold(s)
	folded = resolveRange(folded)
	folded = stripLeadingWeekday(folded)

	hour, minute, hasTime, remainder := extractTime(folded)

	remainder = mapMonthNames(remainder)
	remainder = punctRe.ReplaceAllString(remainder, " ")
	remainder = dropConnectorWords(remainder)
	remainder = multiSpaceRe.ReplaceAllString(remainder, " ")

	day, err := extractDay(remainder, ref)
	if err != nil {
		return Result{}, fmt.Errorf("no calendar day in %q: %w", s, err)
	}

	return Result{Day: day, Hour: hour, Minute: minute, HasTime: hasTime}, nil
}

// extractDay pulls a calendar day out of a normalized string, trying the
// unambiguous forms first and falling back to marked month/day pairs.
func extractDay(s string, ref time.Time) (time.Time, error) {
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return makeDay(year, month, day)
	}

	if m := monthDayRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		return dayWithHeuristicYear(month, day, yearIn(s), ref)
	}

	if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return dayWithHeuristicYear(month, day, yearIn(s), ref)
	}

	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		day, month := first, second
		if first <= 12 && second > 12 {
			// "5/15" can only be month/day.
			day, month = second, first
		}
		year := 0
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		return dayWithHeuristicYear(month, day, year, ref)
	}

	// Last resort: a lone marked month plus a standalone day number
	// somewhere else in the string.
	if m := loneMonthRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		rest := loneMonthRe.ReplaceAllString(s, " ")
		rest = yearRe.ReplaceAllString(rest, " ")
		if d := loneDayRe.FindStringSubmatch(rest); d != nil {
			day, _ := strconv.Atoi(d[1])
			return dayWithHeuristicYear(month, day, yearIn(s), ref)
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized format")
}

// yearIn returns an explicit 4-digit year found in the string, or 0.
func yearIn(s string) int {
	if m := yearRe.FindString(s); m != "" {
		year, _ := strconv.Atoi(m)
		return year
	}
	return 0
}

// dayWithHeuristicYear builds the day, defaulting to ref's year. A date
// that lands more than ~6 months before ref is assumed to belong to the
// next year (a "Jan 5" listing scraped in December).
func dayWithHeuristicYear(month, day, year int, ref time.Time) (time.Time, error) {
	if year != 0 {
		return makeDay(year, month, day)
	}

	candidate, err := makeDay(ref.Year(), month, day)
	if err != nil {
		return time.Time{}, err
	}
	if ref.Sub(candidate) > 180*24*time.Hour {
		return makeDay(ref.Year()+1, month, day)
	}
	return candidate, nil
}

// makeDay validates and constructs a midnight-UTC day.
func makeDay(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("month %d day %d out of range", month, day)
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflow such as Feb 30.
	if d.Day() != day || d.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("day %d does not exist in month %d", day, month)
	}
	return d, nil
}

// DaysFrom computes the signed whole-day difference between the result's day
// and the reference clock's calendar day. Positive values are in the future.
func (r Result) DaysFrom(ref time.Time) int {
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return int(r.Day.Sub(refDay) / (24 * time.Hour))
}
