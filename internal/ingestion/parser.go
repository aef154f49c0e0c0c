package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/dancepulse/dancepulse/internal/dateparse"
	"github.com/dancepulse/dancepulse/internal/models"
)

// RejectReason identifies why the parser dropped a raw event. Rejections are
// per-record and never abort the batch.
type RejectReason string

const (
	ReasonMissingTitle    RejectReason = "missing_title"
	ReasonMissingLink     RejectReason = "missing_link"
	ReasonUnparseableDate RejectReason = "unparseable_date"
	ReasonOutsideWindow   RejectReason = "outside_window"
)

// RejectedError reports a single-record rejection together with the raw
// field that caused it, for offline audit.
type RejectedError struct {
	Reason RejectReason
	Detail string
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// reject is a shorthand constructor.
func reject(reason RejectReason, detail string) error {
	return &RejectedError{Reason: reason, Detail: detail}
}

// Parser maps raw provider records onto normalized events.
type Parser struct {
	// MaxDaysForward is the forward window: events whose day is further
	// than this many days from the run clock are rejected.
	MaxDaysForward int
}

// NewParser creates a parser with the given forward window.
func NewParser(maxDaysForward int) *Parser {
	return &Parser{MaxDaysForward: maxDaysForward}
}

// Parse normalizes one raw event. The ref clock anchors both year inference
// and the forward window so a run that crosses midnight stays consistent.
// A nil event with a *RejectedError means the record was dropped; the caller
// continues with the rest of the batch.
func (p *Parser) Parse(raw models.RawEvent, city models.City, ref time.Time) (*models.Event, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return nil, reject(ReasonMissingTitle, "")
	}
	link := strings.TrimSpace(raw.Link)
	if link == "" {
		return nil, reject(ReasonMissingLink, title)
	}

	// Both provider date fields feed the normalizer: the short start_date
	// carries the day, the human-readable when often carries the time.
	dateText := strings.TrimSpace(raw.Date.StartDate + " " + raw.Date.When)
	result, err := dateparse.ParseDayTime(dateText, ref)
	if err != nil {
		return nil, reject(ReasonUnparseableDate, dateText)
	}
	if days := result.DaysFrom(ref); days > p.MaxDaysForward {
		return nil, reject(ReasonOutsideWindow, fmt.Sprintf("%s (+%dd)", result.Day.Format("2006-01-02"), days))
	}

	ev := &models.Event{
		SourceID:       SourceID(link),
		SourcePlatform: "google_events",
		SourceURL:      link,
		ProviderID:     raw.EventID,
		Name:           title,
		Description:    strings.TrimSpace(raw.Description),
		Venue:          strings.TrimSpace(raw.Venue.Name),
		Address:        strings.Join(raw.Address, ", "),
		City:           city.Name,
		Country:        city.CountryCode,
		EventDay:       result.Day,
		RawWhen:        raw.Date.When,
		IsDanceEvent:   models.VerdictUnknown,
		RetrievedAt:    ref,
	}

	if result.HasTime {
		t := result.StartTime()
		ev.StartTime = &t
	}

	if gps := pickCoordinates(raw); gps != nil {
		lat, lng := gps.Latitude, gps.Longitude
		ev.Lat, ev.Lng = &lat, &lng
	}

	return ev, nil
}

// pickCoordinates prefers the event-level point over the venue's.
func pickCoordinates(raw models.RawEvent) *models.Coordinates {
	if raw.GPS != nil {
		return raw.GPS
	}
	return raw.Venue.Coordinates
}

// SourceID derives the stable identity surrogate from the permalink. It
// hashes only immutable upstream identity so re-ingestion is idempotent.
func SourceID(link string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(link)))
	return hex.EncodeToString(sum[:])
}

// NearTerm returns a predicate for the pagination cutoff: whether a raw
// event's short date field parses to a day within the forward window.
func (p *Parser) NearTerm(ref time.Time) func(models.RawEvent) bool {
	return func(raw models.RawEvent) bool {
		result, err := dateparse.ParseDayTime(raw.Date.StartDate, ref)
		if err != nil {
			return false
		}
		days := result.DaysFrom(ref)
		return days >= 0 && days <= p.MaxDaysForward
	}
}
