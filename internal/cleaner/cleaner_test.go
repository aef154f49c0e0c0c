package cleaner

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/dancepulse/dancepulse/internal/models"
)

type extractionUpdate struct {
	sourceID string
	styles   []string
	verdict  models.Verdict
	result   *models.ExtractionResult
}

type fakeSource struct {
	events  []*models.Event
	updates []extractionUpdate
}

func (f *fakeSource) ListPage(_ context.Context, offset, limit int) ([]*models.Event, error) {
	if offset >= len(f.events) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.events) {
		end = len(f.events)
	}
	return f.events[offset:end], nil
}

func (f *fakeSource) UpdateExtraction(_ context.Context, sourceID string, styles []string, verdict models.Verdict, ex *models.ExtractionResult) error {
	f.updates = append(f.updates, extractionUpdate{sourceID: sourceID, styles: styles, verdict: verdict, result: ex})
	return nil
}

type fakeWriter struct {
	upserts map[string]*models.CleanEvent
	deletes []string
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{upserts: make(map[string]*models.CleanEvent)}
}

func (f *fakeWriter) Upsert(_ context.Context, ev *models.CleanEvent) error {
	f.upserts[ev.EventID] = ev
	return nil
}

func (f *fakeWriter) Delete(_ context.Context, eventID string) error {
	f.deletes = append(f.deletes, eventID)
	return nil
}

type fakeExtractor struct {
	result *models.ExtractionResult
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(_ context.Context, _, _, _ string) (*models.ExtractionResult, error) {
	f.calls++
	return f.result, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func storedEvent(id, name string) *models.Event {
	return &models.Event{
		SourceID:     id,
		Name:         name,
		EventDay:     time.Date(2026, time.May, 15, 0, 0, 0, 0, time.UTC),
		IsDanceEvent: models.VerdictUnknown,
	}
}

func TestRunCleansClassifiedEvents(t *testing.T) {
	ev := storedEvent("a1", "Noche de Salsa y Bachata")
	ev.StartTime = ptr("20:00")
	ev.RawWhen = "Fri, May 15, 8:00 – 11:00 PM"
	ev.Venue = "Club Tropical"

	source := &fakeSource{events: []*models.Event{ev}}
	writer := newFakeWriter()
	cl := New(source, writer, nil, discardLogger())

	stats, err := cl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Scanned != 1 || stats.Cleaned != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	clean, ok := writer.upserts["a1"]
	if !ok {
		t.Fatal("expected cleaned row for a1")
	}
	if len(clean.DanceStyles) != 2 {
		t.Errorf("expected styles from classifier, got %v", clean.DanceStyles)
	}
	if clean.StartTime == nil || *clean.StartTime != "8:00 p.m." {
		t.Errorf("unexpected start time: %v", clean.StartTime)
	}
	if clean.EndTime == nil || *clean.EndTime != "11:00 p.m." {
		t.Errorf("unexpected end time: %v", clean.EndTime)
	}
}

func TestRunDropsUnclassifiedEvents(t *testing.T) {
	ev := storedEvent("b2", "Networking Mixer at the Hotel Bar")

	source := &fakeSource{events: []*models.Event{ev}}
	writer := newFakeWriter()
	cl := New(source, writer, nil, discardLogger())

	stats, err := cl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Dropped != 1 {
		t.Errorf("expected 1 dropped, got %+v", stats)
	}
	if len(writer.upserts) != 0 {
		t.Errorf("expected no cleaned rows, got %d", len(writer.upserts))
	}
}

func TestRunKeepsProviderConfirmedWithoutStyles(t *testing.T) {
	ev := storedEvent("c3", "Friday Social")
	ev.IsDanceEvent = models.VerdictTrue

	source := &fakeSource{events: []*models.Event{ev}}
	writer := newFakeWriter()
	cl := New(source, writer, nil, discardLogger())

	stats, err := cl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Cleaned != 1 {
		t.Fatalf("expected event kept on provider verdict, got %+v", stats)
	}
}

func TestRunExcludesFalseVerdicts(t *testing.T) {
	ev := storedEvent("d4", "Salsa Cooking Class")
	ev.IsDanceEvent = models.VerdictFalse
	ev.DanceStyles = []string{"Salsa"}

	source := &fakeSource{events: []*models.Event{ev}}
	writer := newFakeWriter()
	cl := New(source, writer, nil, discardLogger())

	stats, err := cl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Excluded != 1 {
		t.Errorf("expected 1 excluded, got %+v", stats)
	}
	if len(writer.deletes) != 1 || writer.deletes[0] != "d4" {
		t.Errorf("expected projection delete for d4, got %v", writer.deletes)
	}
}

func TestRunExcludesNoiseDespiteStyleMatch(t *testing.T) {
	// A staged-performance listing mentions a style keyword but carries no
	// participatory signal; the style hit alone must not keep it.
	ev := storedEvent("h8", "Salsa Orchestra in Concert")
	ev.Description = "A tribute to the golden era of Cuban big bands, live on stage."

	source := &fakeSource{events: []*models.Event{ev}}
	writer := newFakeWriter()
	cl := New(source, writer, nil, discardLogger())

	stats, err := cl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Excluded != 1 {
		t.Fatalf("expected 1 excluded, got %+v", stats)
	}
	if len(writer.upserts) != 0 {
		t.Errorf("expected no cleaned rows, got %d", len(writer.upserts))
	}
	if len(writer.deletes) != 1 || writer.deletes[0] != "h8" {
		t.Errorf("expected projection delete for h8, got %v", writer.deletes)
	}
}

func TestRunSkipsDuplicates(t *testing.T) {
	ev := storedEvent("e5", "Salsa Night")
	ev.IsDuplicate = true

	source := &fakeSource{events: []*models.Event{ev}}
	writer := newFakeWriter()
	cl := New(source, writer, nil, discardLogger())

	stats, err := cl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Scanned != 1 || stats.Cleaned != 0 {
		t.Errorf("expected duplicate skipped, got %+v", stats)
	}
}

func TestRunAppliesExtraction(t *testing.T) {
	ev := storedEvent("f6", "Milonga del Barrio")
	ev.Description = "Tango social with live orchestra. Doors 9 PM. Entry $10."

	extractor := &fakeExtractor{result: &models.ExtractionResult{
		RewrittenDescription: ptr("An intimate tango social with a live orchestra."),
		LiveBand:             ptr(true),
		Price:                ptr("$10"),
		IsDanceEvent:         ptr(true),
	}}

	source := &fakeSource{events: []*models.Event{ev}}
	writer := newFakeWriter()
	cl := New(source, writer, extractor, discardLogger())

	stats, err := cl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.RewriteAttempts != 1 {
		t.Errorf("expected 1 rewrite attempt, got %+v", stats)
	}
	if extractor.calls != 1 {
		t.Errorf("expected 1 extractor call, got %d", extractor.calls)
	}

	clean := writer.upserts["f6"]
	if clean == nil {
		t.Fatal("expected cleaned row for f6")
	}
	if clean.Description != "An intimate tango social with a live orchestra." {
		t.Errorf("expected rewritten description, got %q", clean.Description)
	}
	if clean.LiveBand == nil || !*clean.LiveBand {
		t.Error("expected live band flag from extraction")
	}
	if clean.Price == nil || *clean.Price != "$10" {
		t.Errorf("expected price from extraction, got %v", clean.Price)
	}

	// The answers must also land on the raw row so a later run can skip
	// the model call.
	if len(source.updates) != 1 {
		t.Fatalf("expected 1 extraction write-back, got %d", len(source.updates))
	}
	update := source.updates[0]
	if update.sourceID != "f6" {
		t.Errorf("write-back for %q, want f6", update.sourceID)
	}
	if update.verdict != models.VerdictTrue {
		t.Errorf("write-back verdict %q, want %q", update.verdict, models.VerdictTrue)
	}
	if update.result == nil || update.result.RewrittenDescription == nil {
		t.Error("write-back missing the rewritten description")
	}
}

func TestRunSkipsExtractionWhenAlreadyRewritten(t *testing.T) {
	ev := storedEvent("f7", "Milonga del Barrio")
	ev.DanceStyles = []string{"Tango"}
	ev.RewrittenDescription = "An intimate tango social."
	ev.IsDanceEvent = models.VerdictTrue

	extractor := &fakeExtractor{result: &models.ExtractionResult{}}
	source := &fakeSource{events: []*models.Event{ev}}
	writer := newFakeWriter()
	cl := New(source, writer, extractor, discardLogger())

	stats, err := cl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if extractor.calls != 0 {
		t.Errorf("expected no extractor calls for a rewritten record, got %d", extractor.calls)
	}
	if stats.RewriteAttempts != 0 {
		t.Errorf("expected no rewrite attempts, got %+v", stats)
	}
	if len(source.updates) != 0 {
		t.Errorf("expected no write-backs, got %d", len(source.updates))
	}
	if got := writer.upserts["f7"].Description; got != "An intimate tango social." {
		t.Errorf("expected persisted rewrite used, got %q", got)
	}
}

func TestRunSurvivesExtractorFailure(t *testing.T) {
	ev := storedEvent("g7", "Kizomba Social")
	ev.Description = "Sensual kizomba night."

	extractor := &fakeExtractor{err: errors.New("model unavailable")}

	source := &fakeSource{events: []*models.Event{ev}}
	writer := newFakeWriter()
	cl := New(source, writer, extractor, discardLogger())

	stats, err := cl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Cleaned != 1 {
		t.Fatalf("expected record kept despite extractor failure, got %+v", stats)
	}
	if got := writer.upserts["g7"].Description; got != "Sensual kizomba night." {
		t.Errorf("expected original description fallback, got %q", got)
	}
}

func TestDisplayTimeFormatting(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"20:00", "8:00 p.m."},
		{"00:00", "12:00 a.m."},
		{"12:00", "12:00 p.m."},
		{"09:30", "9:30 a.m."},
	}

	for _, tt := range tests {
		got := displayStart(&tt.in)
		if got == nil || *got != tt.want {
			t.Errorf("displayStart(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}

	if displayStart(nil) != nil {
		t.Error("expected nil display time for missing start time")
	}
}
