package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/dancepulse/dancepulse/internal/dedup"
	"github.com/dancepulse/dancepulse/internal/models"
)

// PostgresEventRepository stores normalized events. The upsert conflict key
// is (event_day, venue_key, name_key), where the key columns hold the
// canonicalized venue and name, so casing or accent differences across
// providers hit the same row.
type PostgresEventRepository struct {
	db *sql.DB
}

// NewPostgresEventRepository creates a PostgreSQL event repository.
func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// Upsert inserts or updates an event on the canonical conflict triple.
// Re-ingesting the same logical event refreshes its mutable fields and
// leaves created_at untouched.
func (r *PostgresEventRepository) Upsert(ctx context.Context, ev *models.Event) error {
	query := `
		INSERT INTO events (
			source_id, source_platform, source_url, provider_id,
			name, name_key, description, rewritten_description,
			venue, venue_key, address, city, country, lat, lng,
			event_day, start_time, raw_when,
			dance_styles, is_dance_event, live_band, class_before, price,
			retrieved_at, is_duplicate, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18,
			$19, $20, $21, $22, $23,
			$24, $25, NOW(), NOW()
		)
		ON CONFLICT (event_day, venue_key, name_key) DO UPDATE SET
			source_url = EXCLUDED.source_url,
			provider_id = EXCLUDED.provider_id,
			description = EXCLUDED.description,
			rewritten_description = COALESCE(NULLIF(EXCLUDED.rewritten_description, ''), events.rewritten_description),
			address = COALESCE(NULLIF(EXCLUDED.address, ''), events.address),
			lat = COALESCE(EXCLUDED.lat, events.lat),
			lng = COALESCE(EXCLUDED.lng, events.lng),
			start_time = COALESCE(EXCLUDED.start_time, events.start_time),
			raw_when = EXCLUDED.raw_when,
			dance_styles = EXCLUDED.dance_styles,
			is_dance_event = EXCLUDED.is_dance_event,
			live_band = COALESCE(EXCLUDED.live_band, events.live_band),
			class_before = COALESCE(EXCLUDED.class_before, events.class_before),
			price = COALESCE(EXCLUDED.price, events.price),
			retrieved_at = EXCLUDED.retrieved_at,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		ev.SourceID,
		ev.SourcePlatform,
		ev.SourceURL,
		nullString(ev.ProviderID),
		ev.Name,
		dedup.Canonicalize(ev.Name),
		ev.Description,
		ev.RewrittenDescription,
		ev.Venue,
		dedup.Canonicalize(ev.Venue),
		ev.Address,
		ev.City,
		ev.Country,
		ev.Lat,
		ev.Lng,
		ev.EventDay,
		ev.StartTime,
		ev.RawWhen,
		pq.Array(ev.DanceStyles),
		string(ev.IsDanceEvent),
		ev.LiveBand,
		ev.ClassBefore,
		ev.Price,
		ev.RetrievedAt,
		ev.IsDuplicate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event %s: %w", ev.SourceID, err)
	}
	return nil
}

const eventColumns = `
	source_id, source_platform, source_url, COALESCE(provider_id, ''),
	name, description, COALESCE(rewritten_description, ''),
	venue, address, city, country, lat, lng,
	event_day, start_time, raw_when,
	dance_styles, is_dance_event, live_band, class_before, price,
	retrieved_at, is_duplicate, created_at, updated_at`

// ListPage returns a stable page of events ordered by creation, for the
// batch passes (dedup, cleaner) that walk the full table.
func (r *PostgresEventRepository) ListPage(ctx context.Context, offset, limit int) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		ORDER BY created_at, source_id
		OFFSET $1 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// MarkDuplicate flags an event as a duplicate of the master record. The row
// is retained for audit, not deleted.
func (r *PostgresEventRepository) MarkDuplicate(ctx context.Context, sourceID, duplicateOf string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET is_duplicate = TRUE, duplicate_of = $2, updated_at = NOW()
		WHERE source_id = $1
	`, sourceID, duplicateOf)
	if err != nil {
		return fmt.Errorf("failed to mark %s duplicate: %w", sourceID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check duplicate update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("event %s not found", sourceID)
	}
	return nil
}

// UpdateExtraction merges the extractor's answers into a stored event.
// Classification results are merged fields, never replacements of parsed
// data.
func (r *PostgresEventRepository) UpdateExtraction(ctx context.Context, sourceID string, styles []string, verdict models.Verdict, ex *models.ExtractionResult) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE events SET
			dance_styles = $2,
			is_dance_event = $3,
			rewritten_description = COALESCE($4, rewritten_description),
			live_band = COALESCE($5, live_band),
			class_before = COALESCE($6, class_before),
			price = COALESCE($7, price),
			updated_at = NOW()
		WHERE source_id = $1
	`, sourceID,
		pq.Array(styles),
		string(verdict),
		ex.RewrittenDescription,
		ex.LiveBand,
		ex.ClassBefore,
		ex.Price,
	)
	if err != nil {
		return fmt.Errorf("failed to update extraction for %s: %w", sourceID, err)
	}
	return nil
}

// PurgePastEvents retires events whose day is before the cutoff. This is the
// only deletion path; the core pipeline itself never removes rows.
func (r *PostgresEventRepository) PurgePastEvents(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE event_day < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge past events: %w", err)
	}
	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged events: %w", err)
	}
	return purged, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		ev      models.Event
		verdict string
		styles  pq.StringArray
	)
	err := row.Scan(
		&ev.SourceID, &ev.SourcePlatform, &ev.SourceURL, &ev.ProviderID,
		&ev.Name, &ev.Description, &ev.RewrittenDescription,
		&ev.Venue, &ev.Address, &ev.City, &ev.Country, &ev.Lat, &ev.Lng,
		&ev.EventDay, &ev.StartTime, &ev.RawWhen,
		&styles, &verdict, &ev.LiveBand, &ev.ClassBefore, &ev.Price,
		&ev.RetrievedAt, &ev.IsDuplicate, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	ev.DanceStyles = styles
	ev.IsDanceEvent = models.Verdict(verdict)
	return &ev, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
