// Package cleaner runs the offline second pass over stored events: it
// re-applies the style classifier, optionally asks the text extractor to
// fill missing structured fields, and writes the presentation projection.
// It never mutates the raw event rows.
package cleaner

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/dancepulse/dancepulse/internal/classify"
	"github.com/dancepulse/dancepulse/internal/dateparse"
	"github.com/dancepulse/dancepulse/internal/models"
)

// EventSource pages stored events in a stable order and accepts the
// extraction results written back to them, so a later run does not repeat
// the same model calls.
type EventSource interface {
	ListPage(ctx context.Context, offset, limit int) ([]*models.Event, error)
	UpdateExtraction(ctx context.Context, sourceID string, styles []string, verdict models.Verdict, ex *models.ExtractionResult) error
}

// CleanWriter persists the cleaned projection.
type CleanWriter interface {
	Upsert(ctx context.Context, ev *models.CleanEvent) error
	Delete(ctx context.Context, eventID string) error
}

// FieldExtractor fills structured fields from free text. Optional; when
// absent the cleaner works from whatever ingestion already stored.
type FieldExtractor interface {
	Extract(ctx context.Context, title, description, rawWhen string) (*models.ExtractionResult, error)
}

const defaultPageSize = 500

// Stats summarizes one cleaner run.
type Stats struct {
	Scanned         int
	Cleaned         int
	Dropped         int // no style and no affirmative verdict
	Excluded        int // verdict explicitly false
	RewriteAttempts int
}

// Cleaner builds the cleaned projection from stored events.
type Cleaner struct {
	source     EventSource
	writer     CleanWriter
	classifier *classify.Classifier
	extractor  FieldExtractor
	logger     *slog.Logger
	pageSize   int
	now        func() time.Time
}

// New constructs a cleaner. extractor may be nil.
func New(source EventSource, writer CleanWriter, extractor FieldExtractor, logger *slog.Logger) *Cleaner {
	return &Cleaner{
		source:     source,
		writer:     writer,
		classifier: classify.New(),
		extractor:  extractor,
		logger:     logger,
		pageSize:   defaultPageSize,
		now:        time.Now,
	}
}

// Run pages through every stored event and rebuilds its cleaned row. A
// record whose verdict is explicitly false has its projection removed; a
// record with no detected style and no affirmative verdict is skipped.
func (c *Cleaner) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	for offset := 0; ; offset += c.pageSize {
		page, err := c.source.ListPage(ctx, offset, c.pageSize)
		if err != nil {
			return stats, fmt.Errorf("failed to list events at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}

		for _, ev := range page {
			stats.Scanned++
			if ev.IsDuplicate {
				continue
			}

			if err := c.cleanOne(ctx, ev, &stats); err != nil {
				return stats, err
			}
		}

		if len(page) < c.pageSize {
			break
		}
	}

	c.logger.Info("cleaner pass complete",
		"scanned", stats.Scanned,
		"cleaned", stats.Cleaned,
		"dropped", stats.Dropped,
		"excluded", stats.Excluded)
	return stats, nil
}

func (c *Cleaner) cleanOne(ctx context.Context, ev *models.Event, stats *Stats) error {
	verdict := ev.IsDanceEvent
	styles := ev.DanceStyles
	price := ev.Price
	liveBand := ev.LiveBand
	classBefore := ev.ClassBefore
	description := ev.RewrittenDescription

	outcome := c.classifier.Classify(classify.Input{
		Title:             ev.Name,
		Description:       ev.Description,
		Venue:             ev.Venue,
		ProviderConfirmed: verdict == models.VerdictTrue,
	})
	if len(styles) == 0 {
		styles = outcome.Styles
	}

	if c.extractor != nil && description == "" {
		stats.RewriteAttempts++
		extraction, err := c.extractor.Extract(ctx, ev.Name, ev.Description, ev.RawWhen)
		if err != nil {
			// Rewrite failures degrade the record, never the run.
			c.logger.Warn("extraction failed", "source_id", ev.SourceID, "error", err)
		} else {
			if extraction.RewrittenDescription != nil {
				description = *extraction.RewrittenDescription
			}
			if price == nil {
				price = extraction.Price
			}
			if liveBand == nil {
				liveBand = extraction.LiveBand
			}
			if classBefore == nil {
				classBefore = extraction.ClassBefore
			}
			if verdict == models.VerdictUnknown {
				verdict = models.VerdictFromBool(extraction.IsDanceEvent)
			}

			// Persist the answers onto the raw row so the next run skips
			// the model call for this record.
			if err := c.source.UpdateExtraction(ctx, ev.SourceID, styles, verdict, extraction); err != nil {
				c.logger.Warn("failed to persist extraction", "source_id", ev.SourceID, "error", err)
			}
		}
	}

	if len(styles) == 0 && verdict != models.VerdictTrue {
		stats.Dropped++
		return nil
	}

	// A noise-suppressed record stays out of the projection even when a
	// style keyword matched; only an affirmative verdict overrides that.
	if verdict == models.VerdictFalse || (!outcome.PassesFilter && verdict != models.VerdictTrue) {
		stats.Excluded++
		if err := c.writer.Delete(ctx, ev.SourceID); err != nil {
			return fmt.Errorf("failed to remove excluded event %s: %w", ev.SourceID, err)
		}
		return nil
	}

	if description == "" {
		description = ev.Description
	}

	clean := &models.CleanEvent{
		EventID:     ev.SourceID,
		Name:        ev.Name,
		Description: description,
		DanceStyles: styles,
		Price:       price,
		StartTime:   displayStart(ev.StartTime),
		EndTime:     displayEnd(ev.RawWhen),
		LiveBand:    liveBand,
		ClassBefore: classBefore,
		Venue:       ev.Venue,
		Address:     ev.Address,
		EventDay:    ev.EventDay,
		City:        ev.City,
		Country:     ev.Country,
		CleanedAt:   c.now().UTC(),
	}

	if err := c.writer.Upsert(ctx, clean); err != nil {
		return fmt.Errorf("failed to upsert cleaned event %s: %w", ev.SourceID, err)
	}
	stats.Cleaned++
	return nil
}

// displayStart converts a stored "HH:MM" 24-hour time into the 12-hour
// display form. Nil stays nil: a missing start time is not midnight.
func displayStart(hhmm *string) *string {
	if hhmm == nil {
		return nil
	}
	var h, m int
	if _, err := fmt.Sscanf(*hhmm, "%d:%d", &h, &m); err != nil || h > 23 || m > 59 {
		return nil
	}
	s := formatTwelveHour(h, m)
	return &s
}

// displayEnd pulls the closing time out of the raw "when" text, if the
// provider gave a range.
func displayEnd(rawWhen string) *string {
	h, m, ok := dateparse.EndTime(rawWhen)
	if !ok {
		return nil
	}
	s := formatTwelveHour(h, m)
	return &s
}

func formatTwelveHour(h, m int) string {
	marker := "a.m."
	if h >= 12 {
		marker = "p.m."
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, marker)
}
