// Package classify decides whether a candidate record is a genuine
// participatory dance event, and which styles it mentions. Naive keyword
// matching over listing text produces too many false positives (concerts
// that mention "salsa" in passing) and naive noise filtering too many false
// negatives (classes advertised at theatres), so the verdict is built from
// layered rule sets evaluated in a fixed order: noise suppression with a
// strong-activity override first, then venue and style-ambiguity checks,
// then the final allowance.
package classify

import (
	"strings"
)

// Input is one candidate record for classification.
type Input struct {
	Title       string
	Description string
	Venue       string

	// ProviderConfirmed is true when the provider's own taxonomy already
	// labels the record as dance (e.g. a "Dance" segment).
	ProviderConfirmed bool
}

// Outcome is the classification verdict for a record.
type Outcome struct {
	Styles       []string
	PassesFilter bool
}

// Classifier applies the style and noise rule tables. The zero value is not
// usable; construct with New.
type Classifier struct {
	styles []StyleRule
}

// New returns a classifier using the canonical rule tables.
func New() *Classifier {
	return &Classifier{styles: styleRules}
}

// Classify runs the full rule pipeline over one record.
func (c *Classifier) Classify(in Input) Outcome {
	blob := strings.TrimSpace(in.Title + " " + in.Description)

	matched, anyUnambiguous := c.matchStyles(blob)

	// Stage 1: performance-noise suppression. A strong participatory
	// indicator always rescues the record; this must run before the venue
	// and ambiguity checks so the rescue cannot be undone by them.
	if performanceNoiseRe.MatchString(blob) && !strongActivityRe.MatchString(blob) {
		return Outcome{Styles: matched, PassesFilter: false}
	}

	// Stage 2: performance venues need corroboration beyond the text hit.
	if in.Venue != "" && performanceVenueRe.MatchString(in.Venue) {
		if !in.ProviderConfirmed && !activityRe.MatchString(blob) {
			return Outcome{Styles: matched, PassesFilter: false}
		}
	}

	// Stage 3: ambiguous styles ("house", "hustle", "breaking") are not
	// evidence on their own.
	if c.onlyAmbiguousStyles(blob) && !in.ProviderConfirmed && !activityRe.MatchString(blob) {
		return Outcome{Styles: matched, PassesFilter: false}
	}

	// Final allowance: provider confirmation, an activity word, or at
	// least one unambiguous style keyword.
	passes := in.ProviderConfirmed ||
		activityRe.MatchString(blob) ||
		anyUnambiguous

	return Outcome{Styles: matched, PassesFilter: passes}
}

// matchStyles returns every style whose pattern matches the text, in table
// order, plus whether any matched style is unambiguous.
func (c *Classifier) matchStyles(blob string) (styles []string, anyUnambiguous bool) {
	for _, rule := range c.styles {
		if rule.Pattern.MatchString(blob) {
			styles = append(styles, rule.Style)
			if !rule.Ambiguous {
				anyUnambiguous = true
			}
		}
	}
	return styles, anyUnambiguous
}

// onlyAmbiguousStyles reports whether the text matched at least one style
// but every match is ambiguous.
func (c *Classifier) onlyAmbiguousStyles(blob string) bool {
	matchedAny := false
	for _, rule := range c.styles {
		if !rule.Pattern.MatchString(blob) {
			continue
		}
		matchedAny = true
		if !rule.Ambiguous {
			return false
		}
	}
	return matchedAny
}

// Styles returns the canonical style tags in table order, for reporting.
func (c *Classifier) Styles() []string {
	out := make([]string, len(c.styles))
	for i, rule := range c.styles {
		out[i] = rule.Style
	}
	return out
}
