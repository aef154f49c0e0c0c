package ingestion

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dancepulse/dancepulse/internal/models"
)

// EventWriter persists normalized events. Upsert must be idempotent on the
// canonical conflict key so re-ingestion never creates duplicate rows.
type EventWriter interface {
	Upsert(ctx context.Context, ev *models.Event) error
}

// ErrorRecorder captures per-record ingestion failures for offline audit.
type ErrorRecorder interface {
	Record(ctx context.Context, e *models.IngestionError) error
}

// Enricher fills missing fields on an event, best effort. Implementations
// must leave the event unchanged on failure.
type Enricher interface {
	Enrich(ctx context.Context, ev *models.Event) error
}

// Archiver stores the raw provider payload for a city before parsing.
type Archiver interface {
	ArchiveRaw(ctx context.Context, city models.City, events []models.RawEvent) error
}

// MemoryEventWriter is an in-memory EventWriter used in tests. Events are
// keyed the same way the store's conflict key works.
type MemoryEventWriter struct {
	mu     sync.RWMutex
	events map[string]*models.Event
}

// NewMemoryEventWriter creates an empty in-memory writer.
func NewMemoryEventWriter() *MemoryEventWriter {
	return &MemoryEventWriter{events: make(map[string]*models.Event)}
}

func (m *MemoryEventWriter) Upsert(_ context.Context, ev *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ev.EventDay.Format("2006-01-02") + "|" + ev.Venue + "|" + ev.Name
	if existing, ok := m.events[key]; ok {
		ev.CreatedAt = existing.CreatedAt
	} else {
		ev.CreatedAt = time.Now()
	}
	ev.UpdatedAt = time.Now()
	m.events[key] = ev
	return nil
}

// Count returns the number of distinct stored events.
func (m *MemoryEventWriter) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// All returns the stored events in unspecified order.
func (m *MemoryEventWriter) All() []*models.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Event, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev)
	}
	return out
}

// MemoryErrorRecorder is an in-memory ErrorRecorder used in tests.
type MemoryErrorRecorder struct {
	mu     sync.RWMutex
	errors []*models.IngestionError
}

// NewMemoryErrorRecorder creates an empty in-memory recorder.
func NewMemoryErrorRecorder() *MemoryErrorRecorder {
	return &MemoryErrorRecorder{}
}

func (m *MemoryErrorRecorder) Record(_ context.Context, e *models.IngestionError) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.errors = append(m.errors, e)
	return nil
}

// Errors returns all recorded errors.
func (m *MemoryErrorRecorder) Errors() []*models.IngestionError {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.IngestionError(nil), m.errors...)
}
