package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/dancepulse/dancepulse/internal/models"
)

// PostgresCleanEventRepository stores the presentation projection written by
// the offline cleaner. Rows are keyed by the stable event id, so re-running
// the cleaner refreshes rows instead of duplicating them.
type PostgresCleanEventRepository struct {
	db *sql.DB
}

// NewPostgresCleanEventRepository creates a clean-projection repository.
func NewPostgresCleanEventRepository(db *sql.DB) *PostgresCleanEventRepository {
	return &PostgresCleanEventRepository{db: db}
}

// Upsert writes one cleaned event, replacing any previous projection of the
// same event id.
func (r *PostgresCleanEventRepository) Upsert(ctx context.Context, ev *models.CleanEvent) error {
	query := `
		INSERT INTO events_clean (
			event_id, name, description, dance_styles, price,
			start_time, end_time, live_band, class_before,
			venue, address, event_day, city, country, cleaned_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15
		)
		ON CONFLICT (event_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			dance_styles = EXCLUDED.dance_styles,
			price = EXCLUDED.price,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			live_band = EXCLUDED.live_band,
			class_before = EXCLUDED.class_before,
			venue = EXCLUDED.venue,
			address = EXCLUDED.address,
			event_day = EXCLUDED.event_day,
			city = EXCLUDED.city,
			country = EXCLUDED.country,
			cleaned_at = EXCLUDED.cleaned_at
	`

	_, err := r.db.ExecContext(ctx, query,
		ev.EventID,
		ev.Name,
		ev.Description,
		pq.Array(ev.DanceStyles),
		ev.Price,
		ev.StartTime,
		ev.EndTime,
		ev.LiveBand,
		ev.ClassBefore,
		ev.Venue,
		ev.Address,
		ev.EventDay,
		ev.City,
		ev.Country,
		ev.CleanedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert clean event %s: %w", ev.EventID, err)
	}
	return nil
}

// Delete removes a cleaned projection, used when a later pass decides the
// underlying event is not a dance event after all.
func (r *PostgresCleanEventRepository) Delete(ctx context.Context, eventID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events_clean WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to delete clean event %s: %w", eventID, err)
	}
	return nil
}
