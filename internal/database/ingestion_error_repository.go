package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dancepulse/dancepulse/internal/models"
)

// PostgresIngestionErrorRepository persists per-record ingestion failures
// for offline audit and rule tuning.
type PostgresIngestionErrorRepository struct {
	db *sql.DB
}

// NewPostgresIngestionErrorRepository creates an ingestion-error repository.
func NewPostgresIngestionErrorRepository(db *sql.DB) *PostgresIngestionErrorRepository {
	return &PostgresIngestionErrorRepository{db: db}
}

// Record saves one ingestion error.
func (r *PostgresIngestionErrorRepository) Record(ctx context.Context, e *models.IngestionError) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingestion_errors (id, platform, error_type, url, error_msg, metadata, created_at, resolved, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`,
		e.ID,
		e.Platform,
		e.ErrorType,
		e.URL,
		e.ErrorMsg,
		e.Metadata,
		e.CreatedAt,
		e.Resolved,
		e.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record ingestion error: %w", err)
	}
	return nil
}

// List retrieves recent ingestion errors, newest first.
func (r *PostgresIngestionErrorRepository) List(ctx context.Context, limit int, unresolvedOnly bool) ([]models.IngestionError, error) {
	query := `
		SELECT id, platform, error_type, url, error_msg, metadata, created_at, resolved, resolved_at
		FROM ingestion_errors
	`
	if unresolvedOnly {
		query += " WHERE NOT resolved"
	}
	query += " ORDER BY created_at DESC LIMIT $1"

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion errors: %w", err)
	}
	defer rows.Close()

	var errs []models.IngestionError
	for rows.Next() {
		var e models.IngestionError
		if err := rows.Scan(
			&e.ID, &e.Platform, &e.ErrorType, &e.URL,
			&e.ErrorMsg, &e.Metadata, &e.CreatedAt, &e.Resolved, &e.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ingestion error: %w", err)
		}
		errs = append(errs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingestion errors: %w", err)
	}
	return errs, nil
}

// MarkResolved flags an error as handled.
func (r *PostgresIngestionErrorRepository) MarkResolved(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE ingestion_errors SET resolved = TRUE, resolved_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark error resolved: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check resolve update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("ingestion error %s not found", id)
	}
	return nil
}

// CountUnresolved returns the number of open errors, for the run summary.
func (r *PostgresIngestionErrorRepository) CountUnresolved(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingestion_errors WHERE NOT resolved`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unresolved errors: %w", err)
	}
	return count, nil
}
