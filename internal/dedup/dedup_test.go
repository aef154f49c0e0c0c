package dedup

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dancepulse/dancepulse/internal/models"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"São Paulo!", "sao paulo"},
		{"  Forró   Pé-de-Serra  ", "forro pe de serra"},
		{"SALSA & Bachata (Social)", "salsa bachata social"},
		{"", ""},
		{"já está limpo", "ja esta limpo"},
	}
	for _, tt := range tests {
		got := Canonicalize(tt.in)
		if got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
		// Repeated application must not change the value.
		if again := Canonicalize(got); again != got {
			t.Errorf("Canonicalize not idempotent: %q -> %q", got, again)
		}
	}
}

func TestCanonicalKeyPriority(t *testing.T) {
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	withProvider := &models.Event{ProviderID: "tm-123", SourceURL: "https://example.com/e/1", Name: "Salsa Night", Venue: "Club Sol", EventDay: day}
	if got := CanonicalKey(withProvider); got != "pid:tm-123" {
		t.Errorf("provider key = %q", got)
	}

	withURL := &models.Event{SourceURL: "https://www.Example.com/events/salsa-night/?utm_source=x", Name: "Salsa Night", Venue: "Club Sol", EventDay: day}
	if got := CanonicalKey(withURL); got != "url:example.com/events/salsa-night" {
		t.Errorf("url key = %q", got)
	}

	composite := &models.Event{Name: "Salsa Night!", Venue: "Club Sól", EventDay: day}
	if got := CanonicalKey(composite); got != "nvd:salsa night|club sol|2026-09-12" {
		t.Errorf("composite key = %q", got)
	}
}

func TestCanonicalURLVariantsCollide(t *testing.T) {
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	a := &models.Event{SourceURL: "https://www.example.com/e/9?ref=serp"}
	b := &models.Event{SourceURL: "http://example.com/e/9#about"}
	a.EventDay, b.EventDay = day, day
	if CanonicalKey(a) != CanonicalKey(b) {
		t.Errorf("url variants did not collide: %q vs %q", CanonicalKey(a), CanonicalKey(b))
	}
}

type fakeStore struct {
	events []*models.Event
	marked map[string]string
}

func (f *fakeStore) ListPage(_ context.Context, offset, limit int) ([]*models.Event, error) {
	if offset >= len(f.events) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.events) {
		end = len(f.events)
	}
	return f.events[offset:end], nil
}

func (f *fakeStore) MarkDuplicate(_ context.Context, sourceID, duplicateOf string) error {
	if f.marked == nil {
		f.marked = make(map[string]string)
	}
	f.marked[sourceID] = duplicateOf
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunMarksDuplicatesAndPrefersCoordinates(t *testing.T) {
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	lat, lng := -23.55, -46.63
	early := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)

	store := &fakeStore{events: []*models.Event{
		{SourceID: "a", Name: "Salsa Night", Venue: "Club Sol", EventDay: day, RetrievedAt: early},
		{SourceID: "b", Name: "Salsa Night!", Venue: "Club Sól", EventDay: day, RetrievedAt: late, Lat: &lat, Lng: &lng},
		{SourceID: "c", Name: "Unrelated Bachata Social", Venue: "Other", EventDay: day, RetrievedAt: early},
	}}

	stats, err := New(store, testLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Scanned != 3 || stats.Groups != 1 || stats.Duplicates != 1 {
		t.Errorf("stats = %+v", stats)
	}
	// The record with coordinates wins even though it was retrieved later.
	if got := store.marked["a"]; got != "b" {
		t.Errorf("marked = %v, want a -> b", store.marked)
	}
	if _, ok := store.marked["c"]; ok {
		t.Error("unrelated event marked as duplicate")
	}
}

func TestRunTieBreaksOnRetrievalTime(t *testing.T) {
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	early := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	store := &fakeStore{events: []*models.Event{
		{SourceID: "later", Name: "Zouk Social", Venue: "Studio 5", EventDay: day, RetrievedAt: early.Add(time.Hour)},
		{SourceID: "earlier", Name: "Zouk Social", Venue: "Studio 5", EventDay: day, RetrievedAt: early},
	}}

	if _, err := New(store, testLogger()).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := store.marked["later"]; got != "earlier" {
		t.Errorf("marked = %v, want later -> earlier", store.marked)
	}
}
