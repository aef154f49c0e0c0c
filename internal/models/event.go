package models

import (
	"time"
)

// RawEvent represents one record as returned by the events search API,
// before any normalization. Field layout follows the provider's JSON;
// everything here is optional except the title and link, which the parser
// enforces. RawEvents are discarded after parsing apart from the audit copy.
type RawEvent struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Link        string       `json:"link,omitempty"`
	Date        RawEventDate `json:"date"`
	Venue       RawVenue     `json:"venue"`
	Address     []string     `json:"address,omitempty"`
	GPS         *Coordinates `json:"gps_coordinates,omitempty"`
	EventID     string       `json:"event_id,omitempty"` // provider-native identifier, when present
	TicketInfo  []RawTicket  `json:"ticket_info,omitempty"`
}

// RawEventDate carries the provider's two date fields: a short
// machine-oriented start date and a longer human-readable "when" string
// that often includes the time of day.
type RawEventDate struct {
	StartDate string `json:"start_date,omitempty"`
	When      string `json:"when,omitempty"`
}

// RawVenue is the structured venue sub-object, when the provider supplies one.
type RawVenue struct {
	Name        string       `json:"name,omitempty"`
	Rating      float64      `json:"rating,omitempty"`
	Reviews     int          `json:"reviews,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// RawTicket is a ticket/source link attached to a raw event.
type RawTicket struct {
	Source string `json:"source,omitempty"`
	Link   string `json:"link,omitempty"`
	Type   string `json:"link_type,omitempty"`
}

// Coordinates represents a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Event is the canonical normalized record produced by the parser and
// mutated in place by the enrichment adapters. One row per event in the
// store; the conflict key for upserts is (event_day, venue, name) after
// canonicalization.
type Event struct {
	// Identity. SourceID is a stable hash of the permalink, never of
	// mutable content, so re-ingestion is idempotent.
	SourceID       string `json:"source_id"`
	SourcePlatform string `json:"source_platform"`
	SourceURL      string `json:"source_url"`
	ProviderID     string `json:"provider_id,omitempty"` // provider-native id, when the source has one

	// Display text.
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	RewrittenDescription string `json:"rewritten_description,omitempty"`

	// Location.
	Venue   string   `json:"venue,omitempty"`
	Address string   `json:"address,omitempty"`
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`

	// Timing. EventDay is required for retention; a record without a
	// parseable day is rejected before storage. StartTime is optional and
	// its absence is not midnight.
	EventDay  time.Time `json:"event_day"`
	StartTime *string   `json:"start_time,omitempty"` // "HH:MM", 24-hour
	RawWhen   string    `json:"raw_when,omitempty"`

	// Classification.
	DanceStyles  []string `json:"dance_styles,omitempty"`
	IsDanceEvent Verdict  `json:"is_dance_event"`
	LiveBand     *bool    `json:"live_band,omitempty"`
	ClassBefore  *bool    `json:"class_before,omitempty"`
	Price        *string  `json:"price,omitempty"`

	// Bookkeeping.
	RetrievedAt time.Time `json:"retrieved_at"`
	IsDuplicate bool      `json:"is_duplicate"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (e *Event) HasCoordinates() bool {
	return e.Lat != nil && e.Lng != nil
}

// Verdict is the tri-state dance-event classification: records start out
// unknown and are resolved by the classifier or the LLM extractor. A false
// verdict forces exclusion downstream; unknown does not.
type Verdict string

const (
	VerdictUnknown Verdict = "unknown"
	VerdictTrue    Verdict = "true"
	VerdictFalse   Verdict = "false"
)

// VerdictFromBool maps an optional boolean (as returned by the extractor)
// onto the tri-state verdict.
func VerdictFromBool(b *bool) Verdict {
	switch {
	case b == nil:
		return VerdictUnknown
	case *b:
		return VerdictTrue
	default:
		return VerdictFalse
	}
}

// CleanEvent is the presentation projection written by the offline cleaner
// pass. It is keyed by the stable event id, not by the ingestion conflict
// triple.
type CleanEvent struct {
	EventID     string    `json:"event_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	DanceStyles []string  `json:"dance_styles"`
	Price       *string   `json:"price,omitempty"`
	StartTime   *string   `json:"start_time,omitempty"` // display form, e.g. "8:00 p.m."
	EndTime     *string   `json:"end_time,omitempty"`
	LiveBand    *bool     `json:"live_band,omitempty"`
	ClassBefore *bool     `json:"class_before,omitempty"`
	Venue       string    `json:"venue,omitempty"`
	Address     string    `json:"address,omitempty"`
	EventDay    time.Time `json:"event_day"`
	City        string    `json:"city,omitempty"`
	Country     string    `json:"country,omitempty"`
	CleanedAt   time.Time `json:"cleaned_at"`
}
