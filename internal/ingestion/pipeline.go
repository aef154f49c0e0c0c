package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dancepulse/dancepulse/internal/metrics"
	"github.com/dancepulse/dancepulse/internal/models"
)

// Pipeline orchestrates one ingestion run: for each city, fetch the paged
// search results, parse and normalize each record, optionally enrich, and
// upsert into the store. Everything is sequential; the store's conflict key
// is the only concurrency-safety mechanism, so the pipeline never runs
// cities or records in parallel.
type Pipeline struct {
	client   *SearchClient
	parser   *Parser
	writer   EventWriter
	errors   ErrorRecorder
	enricher Enricher // optional
	archiver Archiver // optional
	metrics  *metrics.Collector
	logger   *slog.Logger
	config   PipelineConfig
}

// PipelineConfig holds configuration for one ingestion run.
type PipelineConfig struct {
	MaxPages      int           // pages fetched per city
	MaxCities     int           // 0 means no limit
	Pacing        time.Duration // sleep between cities to stay under quota
	UpsertRetries int
}

// DefaultPipelineConfig returns the defaults for a full run.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxPages:      5,
		MaxCities:     0,
		Pacing:        2 * time.Second,
		UpsertRetries: 2,
	}
}

// NewPipeline creates an ingestion pipeline. enricher and archiver may be
// nil; metrics may be nil to disable instrumentation.
func NewPipeline(
	client *SearchClient,
	parser *Parser,
	writer EventWriter,
	errorRecorder ErrorRecorder,
	enricher Enricher,
	archiver Archiver,
	collector *metrics.Collector,
	logger *slog.Logger,
	config PipelineConfig,
) *Pipeline {
	return &Pipeline{
		client:   client,
		parser:   parser,
		writer:   writer,
		errors:   errorRecorder,
		enricher: enricher,
		archiver: archiver,
		metrics:  collector,
		logger:   logger.With("component", "pipeline"),
		config:   config,
	}
}

// Run processes the city list in input order and returns the run summary.
// Per-record and per-city failures are logged and counted, never fatal; the
// returned error is non-nil only when the run as a whole could not proceed.
func (p *Pipeline) Run(ctx context.Context, cities []models.City) (models.RunSummary, error) {
	start := time.Now()
	summary := models.RunSummary{
		RunID:       uuid.New().String(),
		Mode:        "ingest",
		CitiesTotal: len(cities),
	}

	if p.config.MaxCities > 0 && len(cities) > p.config.MaxCities {
		cities = cities[:p.config.MaxCities]
	}

	p.logger.Info("starting ingestion run",
		"run_id", summary.RunID,
		"cities", len(cities),
		"max_pages", p.config.MaxPages,
		"days_forward", p.parser.MaxDaysForward)

	for i, city := range cities {
		if err := ctx.Err(); err != nil {
			summary.Runtime = time.Since(start)
			return summary, fmt.Errorf("run interrupted: %w", err)
		}
		if i > 0 && p.config.Pacing > 0 {
			time.Sleep(p.config.Pacing)
		}

		p.processCity(ctx, city, &summary)
		summary.CitiesProcessed++
	}

	summary.Runtime = time.Since(start)

	p.logger.Info("ingestion run complete",
		"run_id", summary.RunID,
		"cities", summary.CitiesProcessed,
		"found", summary.EventsFound,
		"parsed", summary.EventsParsed,
		"rejected", summary.EventsRejected,
		"upserts_ok", summary.UpsertsOK,
		"upserts_failed", summary.UpsertsFailed,
		"runtime", summary.Runtime.Round(time.Second))
	return summary, nil
}

// processCity runs the fetch-parse-enrich-upsert sequence for one city.
func (p *Pipeline) processCity(ctx context.Context, city models.City, summary *models.RunSummary) {
	ref := time.Now().UTC()
	logger := p.logger.With("city", city.Location())

	uule, err := EncodeUULE(city.Latitude, city.Longitude, ref)
	if err != nil {
		// A malformed location token would mis-target the whole query.
		logger.Error("skipping city, invalid coordinates", "error", err)
		summary.APIErrors++
		p.metrics.IncAPIError()
		return
	}

	query := Query{
		Text:     searchPhrase(city),
		Language: city.HL,
		Region:   city.GL,
		UULE:     uule,
	}

	raws, stats, fetchErr := p.client.FetchEvents(ctx, query, p.config.MaxPages)
	summary.Requests += stats.Requests
	summary.CreditsUsed += stats.Credits
	p.metrics.AddAPIRequests(stats.Requests)
	if fetchErr != nil {
		// Partial pages are still worth processing.
		logger.Warn("fetch incomplete", "error", fetchErr, "partial_events", len(raws))
		summary.APIErrors++
		p.metrics.IncAPIError()
		p.recordError(ctx, models.ErrorTypeFetchFailed, "", fetchErr.Error(), map[string]any{
			"city":  city.Location(),
			"query": query.Text,
		})
	}

	summary.EventsFound += len(raws)
	p.metrics.AddEventsFound(len(raws))
	logger.Info("fetched events", "count", len(raws), "requests", stats.Requests)

	if p.archiver != nil && len(raws) > 0 {
		if err := p.archiver.ArchiveRaw(ctx, city, raws); err != nil {
			logger.Warn("raw archive failed", "error", err)
		}
	}

	for _, raw := range raws {
		p.processRecord(ctx, raw, city, ref, summary, logger)
	}
}

// processRecord normalizes and stores one raw event. All failures here are
// confined to the record.
func (p *Pipeline) processRecord(
	ctx context.Context,
	raw models.RawEvent,
	city models.City,
	ref time.Time,
	summary *models.RunSummary,
	logger *slog.Logger,
) {
	ev, err := p.parser.Parse(raw, city, ref)
	if err != nil {
		summary.EventsRejected++
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			p.metrics.IncEventRejected(string(rejected.Reason))
			logger.Debug("record rejected",
				"reason", rejected.Reason,
				"title", raw.Title,
				"detail", rejected.Detail)
			if rejected.Reason == ReasonUnparseableDate {
				p.recordError(ctx, models.ErrorTypeDateParseFailed, raw.Link, rejected.Detail, map[string]any{
					"title":      raw.Title,
					"start_date": raw.Date.StartDate,
					"when":       raw.Date.When,
				})
			}
		} else {
			p.metrics.IncEventRejected("other")
			logger.Warn("record rejected", "error", err, "title", raw.Title)
		}
		return
	}
	summary.EventsParsed++
	p.metrics.IncEventParsed()

	if p.enricher != nil {
		summary.EnrichAttempts++
		if err := p.enricher.Enrich(ctx, ev); err != nil {
			// Enrichment is best effort; the event goes in as parsed.
			p.metrics.IncEnrichment("places", false)
			logger.Debug("enrichment failed", "source_id", ev.SourceID, "error", err)
			p.recordError(ctx, models.ErrorTypeEnrichmentFailed, ev.SourceURL, err.Error(), map[string]any{
				"name":  ev.Name,
				"venue": ev.Venue,
			})
		} else {
			p.metrics.IncEnrichment("places", true)
		}
	}

	if err := p.upsertWithRetry(ctx, ev); err != nil {
		summary.UpsertsFailed++
		p.metrics.IncUpsert(false)
		logger.Error("upsert failed", "source_id", ev.SourceID, "error", err)
		p.recordError(ctx, models.ErrorTypeUpsertFailed, ev.SourceURL, err.Error(), map[string]any{
			"name":      ev.Name,
			"venue":     ev.Venue,
			"event_day": ev.EventDay.Format("2006-01-02"),
		})
		return
	}
	summary.UpsertsOK++
	p.metrics.IncUpsert(true)
}

// upsertWithRetry retries store writes with the shared backoff policy.
func (p *Pipeline) upsertWithRetry(ctx context.Context, ev *models.Event) error {
	policy := RetryPolicy{
		MaxRetries:     p.config.UpsertRetries,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         true,
	}
	return Retry(ctx, policy, func() error {
		if err := p.writer.Upsert(ctx, ev); err != nil {
			return NewRetryableError(err)
		}
		return nil
	})
}

// recordError persists an ingestion failure for offline audit. Failures of
// the recorder itself are only logged; they must not take down the run.
func (p *Pipeline) recordError(ctx context.Context, errType models.IngestionErrorType, url, msg string, meta map[string]any) {
	if p.errors == nil {
		return
	}
	metadata, _ := json.Marshal(meta)
	record := &models.IngestionError{
		ID:        uuid.New().String(),
		Platform:  "serpapi_google_events",
		ErrorType: string(errType),
		URL:       url,
		ErrorMsg:  msg,
		Metadata:  string(metadata),
		CreatedAt: time.Now().UTC(),
	}
	if err := p.errors.Record(ctx, record); err != nil {
		p.logger.Warn("failed to record ingestion error", "error", err)
	}
}

// searchPhrase builds the localized query text for a city.
func searchPhrase(city models.City) string {
	switch city.HL {
	case "es":
		return fmt.Sprintf("eventos de baile en %s", city.Name)
	case "pt", "pt-br":
		return fmt.Sprintf("eventos de dança em %s", city.Name)
	default:
		return fmt.Sprintf("dance events in %s", city.Name)
	}
}
