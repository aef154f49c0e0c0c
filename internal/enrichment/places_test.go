package enrichment

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dancepulse/dancepulse/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func placesServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"results": []map[string]any{{
				"name":              "Club Sol",
				"formatted_address": "Calle Mayor 1, Madrid",
				"geometry": map[string]any{
					"location": map[string]float64{"lat": 40.41, "lng": -3.70},
				},
			}},
		})
	}))
}

func newTestEnricher(srv *httptest.Server) *PlacesEnricher {
	client := NewPlacesClient("key", WithPlacesBaseURL(srv.URL))
	return NewPlacesEnricher(client, NewPlaceCache(time.Minute, 100), testLogger())
}

func TestEnrichFillsMissingLocationFields(t *testing.T) {
	calls := 0
	srv := placesServer(t, &calls)
	defer srv.Close()

	ev := &models.Event{Name: "Salsa Night", City: "Madrid"}
	if err := newTestEnricher(srv).Enrich(context.Background(), ev); err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	if ev.Address != "Calle Mayor 1, Madrid" {
		t.Errorf("Address = %q", ev.Address)
	}
	if !ev.HasCoordinates() || *ev.Lat != 40.41 {
		t.Errorf("coordinates not filled: %+v", ev)
	}
	if ev.Venue != "Club Sol" {
		t.Errorf("Venue = %q, want resolved place name", ev.Venue)
	}
}

func TestEnrichSkipsCompleteEvents(t *testing.T) {
	calls := 0
	srv := placesServer(t, &calls)
	defer srv.Close()

	lat, lng := 1.0, 2.0
	ev := &models.Event{
		Name:    "Salsa Night",
		Venue:   "Known Venue",
		Address: "Somewhere 1",
		Lat:     &lat,
		Lng:     &lng,
	}
	if err := newTestEnricher(srv).Enrich(context.Background(), ev); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if calls != 0 {
		t.Errorf("complete event triggered %d lookups", calls)
	}
}

func TestEnrichNeverOverwritesParsedFields(t *testing.T) {
	calls := 0
	srv := placesServer(t, &calls)
	defer srv.Close()

	ev := &models.Event{
		Name:    "Salsa Night",
		Venue:   "Original Venue",
		Address: "Original Address",
		City:    "Madrid",
	}
	if err := newTestEnricher(srv).Enrich(context.Background(), ev); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if ev.Venue != "Original Venue" || ev.Address != "Original Address" {
		t.Errorf("parsed fields overwritten: venue=%q address=%q", ev.Venue, ev.Address)
	}
	if !ev.HasCoordinates() {
		t.Error("missing coordinates were not filled")
	}
}

func TestEnrichResolvesUnknownVenuePlaceholder(t *testing.T) {
	calls := 0
	srv := placesServer(t, &calls)
	defer srv.Close()

	ev := &models.Event{Name: "Salsa Night", Venue: VenueUnknown, City: "Madrid"}
	if err := newTestEnricher(srv).Enrich(context.Background(), ev); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if ev.Venue != "Club Sol" {
		t.Errorf("Venue = %q, want placeholder resolved", ev.Venue)
	}
}

func TestEnrichCachesLookups(t *testing.T) {
	calls := 0
	srv := placesServer(t, &calls)
	defer srv.Close()

	enricher := newTestEnricher(srv)
	for i := 0; i < 3; i++ {
		ev := &models.Event{Name: "Salsa Night", City: "Madrid"}
		if err := enricher.Enrich(context.Background(), ev); err != nil {
			t.Fatalf("Enrich: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("identical queries made %d upstream calls, want 1", calls)
	}
}

func TestEnrichZeroResultsLeavesEventUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ZERO_RESULTS"})
	}))
	defer srv.Close()

	ev := &models.Event{Name: "Obscure Social", City: "Madrid"}
	if err := newTestEnricher(srv).Enrich(context.Background(), ev); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if ev.Address != "" || ev.HasCoordinates() {
		t.Errorf("event mutated on zero results: %+v", ev)
	}
}

func TestEnrichReturnsErrorOnAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "OVER_QUERY_LIMIT"})
	}))
	defer srv.Close()

	ev := &models.Event{Name: "Salsa Night", City: "Madrid"}
	if err := newTestEnricher(srv).Enrich(context.Background(), ev); err == nil {
		t.Error("expected error on OVER_QUERY_LIMIT")
	}
}
