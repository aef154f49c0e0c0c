package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dancepulse/dancepulse/internal/models"
)

// VenueUnknown is the placeholder some stored records carry when the
// provider gave no venue at all. The Places adapter treats it the same as
// an empty venue and tries to resolve a real name.
const VenueUnknown = "__VENUE_UNKNOWN__"

const defaultPlacesBaseURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"

// PlacesClient issues text-search lookups against the Places API.
type PlacesClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// PlacesOption configures a PlacesClient.
type PlacesOption func(*PlacesClient)

// WithPlacesBaseURL overrides the API endpoint, used in tests.
func WithPlacesBaseURL(u string) PlacesOption {
	return func(c *PlacesClient) { c.baseURL = u }
}

// WithPlacesHTTPClient overrides the underlying HTTP client.
func WithPlacesHTTPClient(h *http.Client) PlacesOption {
	return func(c *PlacesClient) { c.httpClient = h }
}

// NewPlacesClient creates a Places text-search client.
func NewPlacesClient(apiKey string, opts ...PlacesOption) *PlacesClient {
	c := &PlacesClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultPlacesBaseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Search runs one text search and returns the best match, or nil when the
// API found nothing.
func (c *PlacesClient) Search(ctx context.Context, query string) (*PlaceResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places status %d", resp.StatusCode)
	}
	var body placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding places response: %w", err)
	}
	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("places status %q", body.Status)
	}
	if len(body.Results) == 0 {
		return nil, nil
	}

	best := body.Results[0]
	return &PlaceResult{
		Name:      best.Name,
		Address:   best.FormattedAddress,
		Latitude:  best.Geometry.Location.Lat,
		Longitude: best.Geometry.Location.Lng,
	}, nil
}

// PlacesEnricher completes missing address, coordinate and venue fields on
// parsed events. Lookups are cached by query string; an event that already
// has both an address and coordinates is skipped without a call.
type PlacesEnricher struct {
	client *PlacesClient
	cache  *PlaceCache
	logger *slog.Logger
}

// NewPlacesEnricher wires a client with an injected cache.
func NewPlacesEnricher(client *PlacesClient, cache *PlaceCache, logger *slog.Logger) *PlacesEnricher {
	return &PlacesEnricher{
		client: client,
		cache:  cache,
		logger: logger.With("component", "places"),
	}
}

// Enrich fills only the missing location fields of ev. Parsed values are
// never overwritten.
func (e *PlacesEnricher) Enrich(ctx context.Context, ev *models.Event) error {
	if ev.Address != "" && ev.HasCoordinates() && knownVenue(ev.Venue) {
		return nil
	}

	query := lookupQuery(ev)
	result, cached := e.cache.Get(query)
	if !cached {
		var err error
		result, err = e.client.Search(ctx, query)
		if err != nil {
			return fmt.Errorf("places lookup %q: %w", query, err)
		}
		e.cache.Put(query, result)
	}
	if result == nil {
		// Cached or fresh miss; nothing to fill.
		return nil
	}

	if ev.Address == "" {
		ev.Address = result.Address
	}
	if !ev.HasCoordinates() && (result.Latitude != 0 || result.Longitude != 0) {
		lat, lng := result.Latitude, result.Longitude
		ev.Lat, ev.Lng = &lat, &lng
	}
	if !knownVenue(ev.Venue) && result.Name != "" {
		ev.Venue = result.Name
	}

	e.logger.Debug("location enriched", "source_id", ev.SourceID, "query", query)
	return nil
}

// knownVenue reports whether the venue field carries a real name.
func knownVenue(venue string) bool {
	v := strings.TrimSpace(venue)
	return v != "" && v != VenueUnknown
}

// lookupQuery builds the text-search query: event name plus venue when one
// is known, always anchored by the city so homonym venues resolve locally.
func lookupQuery(ev *models.Event) string {
	parts := []string{ev.Name}
	if knownVenue(ev.Venue) {
		parts = append(parts, ev.Venue)
	}
	if ev.City != "" {
		parts = append(parts, ev.City)
	}
	return strings.Join(parts, " ")
}
