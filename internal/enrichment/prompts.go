package enrichment

import (
	"fmt"
	"strings"
)

// extractorSystemPrompt fixes the answer contract for the attribute
// extractor. The model is told to emit bare JSON; the parser still tolerates
// prose and code fences around it.
const extractorSystemPrompt = `CRITICAL: You MUST output ONLY valid JSON. Do not include any text before or after the JSON object. Do not wrap it in markdown code blocks.

You are a data cleaner for a dance-event listing service. Given one event's title, description and raw date/time text, produce this exact JSON object:
{
  "rewritten_description": "One or two engaging sentences describing the event, in the language of the input. null if there is nothing to say beyond the title.",
  "live_band": true | false | null,
  "class_before": true | false | null,
  "price": "Free" | "price with currency symbol or code" | null,
  "time": "start time or range as written, e.g. 8:00 PM or 20:00 - 23:00" | null,
  "is_dance_event": true | false
}

Rules:
- live_band is true only when live musicians are explicitly mentioned.
- class_before is true only when a lesson/class precedes the social.
- price must keep its currency marker; if no price is stated, use null. Never invent one.
- time must come from the input text; null when no time is stated.
- is_dance_event is false for concerts, recitals, ballet performances and other staged shows where attendees do not dance.`

// buildExtractorUserPrompt renders one event into the extractor request.
func buildExtractorUserPrompt(title, description, rawWhen string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", strings.TrimSpace(title))
	if d := strings.TrimSpace(description); d != "" {
		fmt.Fprintf(&b, "Description: %s\n", d)
	}
	if w := strings.TrimSpace(rawWhen); w != "" {
		fmt.Fprintf(&b, "Date/time text: %s\n", w)
	}
	return b.String()
}
