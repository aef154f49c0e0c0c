package dedup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dancepulse/dancepulse/internal/models"
)

// EventStore is the subset of event persistence the deduplicator needs.
type EventStore interface {
	ListPage(ctx context.Context, offset, limit int) ([]*models.Event, error)
	MarkDuplicate(ctx context.Context, sourceID string, duplicateOf string) error
}

// Deduplicator sweeps the stored events and flags duplicates. Duplicates are
// retained and marked rather than deleted, so a later re-run can revisit the
// decision and the audit trail stays intact.
type Deduplicator struct {
	store    EventStore
	logger   *slog.Logger
	pageSize int
}

// Stats summarizes one deduplication sweep.
type Stats struct {
	Scanned    int
	Groups     int
	Duplicates int
}

// New creates a deduplicator over the given store.
func New(store EventStore, logger *slog.Logger) *Deduplicator {
	return &Deduplicator{
		store:    store,
		logger:   logger.With("component", "dedup"),
		pageSize: 500,
	}
}

// Run performs a full sweep: load all events page by page, group them by
// canonical key, pick a master per group and mark the rest as duplicates.
func (d *Deduplicator) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	groups := make(map[string][]*models.Event)

	for offset := 0; ; offset += d.pageSize {
		page, err := d.store.ListPage(ctx, offset, d.pageSize)
		if err != nil {
			return stats, fmt.Errorf("listing events at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		stats.Scanned += len(page)
		for _, ev := range page {
			key := CanonicalKey(ev)
			groups[key] = append(groups[key], ev)
		}
		if len(page) < d.pageSize {
			break
		}
	}

	for key, group := range groups {
		if len(group) < 2 {
			continue
		}
		stats.Groups++
		master := pickMaster(group)
		for _, ev := range group {
			if ev.SourceID == master.SourceID {
				continue
			}
			if ev.IsDuplicate {
				continue
			}
			if err := d.store.MarkDuplicate(ctx, ev.SourceID, master.SourceID); err != nil {
				return stats, fmt.Errorf("marking %s duplicate of %s: %w", ev.SourceID, master.SourceID, err)
			}
			stats.Duplicates++
		}
		d.logger.Debug("deduplicated group",
			"key", key,
			"size", len(group),
			"master", master.SourceID)
	}

	d.logger.Info("deduplication sweep complete",
		"scanned", stats.Scanned,
		"groups", stats.Groups,
		"duplicates", stats.Duplicates)
	return stats, nil
}

// pickMaster chooses the record to keep as the group's master. Records with
// coordinates win over records without; ties go to the earliest retrieval.
func pickMaster(group []*models.Event) *models.Event {
	master := group[0]
	for _, ev := range group[1:] {
		if betterMaster(ev, master) {
			master = ev
		}
	}
	return master
}

func betterMaster(candidate, current *models.Event) bool {
	if candidate.HasCoordinates() != current.HasCoordinates() {
		return candidate.HasCoordinates()
	}
	return candidate.RetrievedAt.Before(current.RetrievedAt)
}
