package models

// ExtractionResult is the fixed answer set the text-completion extractor
// must return for one event. Every field is optional on the wire: the
// adapter degrades any malformed or missing field to nil rather than
// failing the record.
type ExtractionResult struct {
	RewrittenDescription *string `json:"rewritten_description"`
	LiveBand             *bool   `json:"live_band"`
	ClassBefore          *bool   `json:"class_before"`
	Price                *string `json:"price"` // "Free", a currency-bearing string, or null
	Time                 *string `json:"time"`  // display time or range, or null
	IsDanceEvent         *bool   `json:"is_dance_event"`
}
