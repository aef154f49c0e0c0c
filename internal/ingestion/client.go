package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dancepulse/dancepulse/internal/models"
)

const (
	defaultBaseURL = "https://serpapi.com/search.json"

	// pageSize is the provider's fixed result count per page.
	pageSize = 10
)

// Query holds the parameters for one paginated event search.
type Query struct {
	Text     string // search phrase, e.g. "dance events in Madrid, ES"
	Language string // hl hint
	Region   string // gl hint
	UULE     string // encoded location token
}

// SearchClient fetches paginated event results from the search provider.
// Transient failures (rate limits, timeouts, connection resets) are retried
// with exponential backoff; pages fetched before a hard failure are kept.
type SearchClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	policy     RetryPolicy
	logger     *slog.Logger

	// nearTerm reports whether a raw event plausibly falls inside the
	// forward window. When set, pagination stops early once fewer than
	// cutoffFraction of a full page's events are near-term, since provider
	// results are roughly date-ordered and later pages only get worse.
	nearTerm       func(models.RawEvent) bool
	cutoffFraction float64
}

// FetchStats counts the network activity of one paginated fetch.
type FetchStats struct {
	Requests int
	Credits  int // as reported by the provider's response metadata
	Retried  bool
}

// ClientOption configures a SearchClient.
type ClientOption func(*SearchClient)

// WithBaseURL overrides the provider endpoint, used in tests.
func WithBaseURL(u string) ClientOption {
	return func(c *SearchClient) { c.baseURL = u }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *SearchClient) { c.policy = p }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *SearchClient) { c.httpClient = h }
}

// WithNearTermCutoff enables the smart-pagination cutoff. fn reports whether
// a raw event is within the forward window; fraction is the minimum share of
// near-term events a full page must have for pagination to continue.
func WithNearTermCutoff(fn func(models.RawEvent) bool, fraction float64) ClientOption {
	return func(c *SearchClient) {
		c.nearTerm = fn
		c.cutoffFraction = fraction
	}
}

// NewSearchClient creates a client for the events search API.
func NewSearchClient(apiKey string, logger *slog.Logger, opts ...ClientOption) *SearchClient {
	c := &SearchClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		policy:     DefaultRetryPolicy(),
		logger:     logger.With("component", "search_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResponse is the provider's page envelope.
type searchResponse struct {
	EventsResults     []models.RawEvent `json:"events_results"`
	SearchInformation struct {
		CreditsUsed int `json:"credits_used"`
	} `json:"search_information"`
	Pagination struct {
		Next string `json:"next"`
	} `json:"serpapi_pagination"`
	Error string `json:"error"`
}

// FetchEvents retrieves up to maxPages pages for the query, in page order.
// On a hard failure mid-sequence the events accumulated so far are returned
// together with the error, so partial results are never discarded.
func (c *SearchClient) FetchEvents(ctx context.Context, q Query, maxPages int) ([]models.RawEvent, FetchStats, error) {
	var (
		events []models.RawEvent
		stats  FetchStats
	)

	for page := 0; page < maxPages; page++ {
		resp, err := c.fetchPage(ctx, q, page*pageSize, &stats)
		if err != nil {
			return events, stats, fmt.Errorf("page %d: %w", page, err)
		}

		events = append(events, resp.EventsResults...)

		// Older responses omit the metadata; a served page still costs one.
		if resp.SearchInformation.CreditsUsed > 0 {
			stats.Credits += resp.SearchInformation.CreditsUsed
		} else {
			stats.Credits++
		}

		c.logger.Debug("fetched page",
			"query", q.Text,
			"page", page,
			"results", len(resp.EventsResults))

		if len(resp.EventsResults) < pageSize || resp.Pagination.Next == "" {
			break
		}
		if c.shouldStopEarly(resp.EventsResults) {
			c.logger.Debug("near-term cutoff reached", "query", q.Text, "page", page)
			break
		}
	}

	return events, stats, nil
}

// fetchPage issues one page request with retry on rate limits and timeouts.
func (c *SearchClient) fetchPage(ctx context.Context, q Query, offset int, stats *FetchStats) (*searchResponse, error) {
	var resp *searchResponse

	attempt := 0
	err := Retry(ctx, c.policy, func() error {
		attempt++
		stats.Requests++
		if attempt > 1 {
			stats.Retried = true
		}

		r, err := c.doRequest(ctx, q, offset)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	return resp, err
}

func (c *SearchClient) doRequest(ctx context.Context, q Query, offset int) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(q, offset), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if isTransient(err) {
			return nil, NewRetryableError(fmt.Errorf("request failed: %w", err))
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusTooManyRequests {
		delay := retryAfter(httpResp)
		return nil, NewRetryableErrorWithDelay(fmt.Errorf("rate limited (HTTP 429)"), delay)
	}
	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", httpResp.StatusCode, body)
	}

	var resp searchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("provider error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *SearchClient) pageURL(q Query, offset int) string {
	params := url.Values{}
	params.Set("engine", "google_events")
	params.Set("q", q.Text)
	params.Set("hl", q.Language)
	params.Set("gl", q.Region)
	if q.UULE != "" {
		params.Set("uule", q.UULE)
	}
	if offset > 0 {
		params.Set("start", strconv.Itoa(offset))
	}
	params.Set("api_key", c.apiKey)
	return c.baseURL + "?" + params.Encode()
}

// shouldStopEarly applies the near-term cutoff to a full page.
func (c *SearchClient) shouldStopEarly(page []models.RawEvent) bool {
	if c.nearTerm == nil || len(page) == 0 {
		return false
	}
	inWindow := 0
	for _, ev := range page {
		if c.nearTerm(ev) {
			inWindow++
		}
	}
	return float64(inWindow)/float64(len(page)) < c.cutoffFraction
}

// isTransient reports whether a transport error is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// retryAfter parses a Retry-After header, in seconds. Zero means no hint.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
