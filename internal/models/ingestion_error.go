package models

import (
	"time"
)

// IngestionError captures a single rejected record or failed unit of work
// with enough context to audit offline and tune parser/classifier rules.
type IngestionError struct {
	ID         string     `json:"id"`
	Platform   string     `json:"platform"`   // e.g. "serpapi_google_events"
	ErrorType  string     `json:"error_type"` // one of the IngestionErrorType values
	URL        string     `json:"url"`        // permalink of the record that failed, if known
	ErrorMsg   string     `json:"error_msg"`
	Metadata   string     `json:"metadata"` // JSON blob with the offending raw fields
	CreatedAt  time.Time  `json:"created_at"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// IngestionErrorType categorizes ingestion failures.
type IngestionErrorType string

const (
	ErrorTypeFetchFailed       IngestionErrorType = "fetch_failed"
	ErrorTypeParsingFailed     IngestionErrorType = "parsing_failed"
	ErrorTypeDateParseFailed   IngestionErrorType = "date_parse_failed"
	ErrorTypeEnrichmentFailed  IngestionErrorType = "enrichment_failed"
	ErrorTypeUpsertFailed      IngestionErrorType = "upsert_failed"
	ErrorTypeRateLimitExceeded IngestionErrorType = "rate_limit_exceeded"
)
