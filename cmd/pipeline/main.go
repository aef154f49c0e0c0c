// Command pipeline runs the dance-event batch pipeline. The default mode
// ingests events for every city in the input CSV; the other modes run the
// offline passes over the store.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/dancepulse/dancepulse/internal/archive"
	"github.com/dancepulse/dancepulse/internal/cleaner"
	"github.com/dancepulse/dancepulse/internal/config"
	"github.com/dancepulse/dancepulse/internal/database"
	"github.com/dancepulse/dancepulse/internal/dedup"
	"github.com/dancepulse/dancepulse/internal/enrichment"
	"github.com/dancepulse/dancepulse/internal/ingestion"
	"github.com/dancepulse/dancepulse/internal/logging"
	"github.com/dancepulse/dancepulse/internal/metrics"
)

func main() {
	mode := flag.String("mode", "ingest", "run mode: ingest, clean, dedup, purge")
	citiesPath := flag.String("cities", "", "path to the city CSV (overrides CITIES_CSV)")
	maxCities := flag.Int("max-cities", 0, "process at most N cities, 0 for all")
	daysForward := flag.Int("days-forward", 0, "event horizon in days (overrides PIPELINE_DAYS_FORWARD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	if *citiesPath != "" {
		cfg.Pipeline.CitiesPath = *citiesPath
	}
	if *maxCities > 0 {
		cfg.Pipeline.MaxCities = *maxCities
	}
	if *daysForward > 0 {
		cfg.Pipeline.DaysForward = *daysForward
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	logger.Info("starting dancepulse", "mode", *mode)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.Database.URL
	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db, "./migrations", logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	events := database.NewPostgresEventRepository(db)
	cleanEvents := database.NewPostgresCleanEventRepository(db)
	ingestionErrors := database.NewPostgresIngestionErrorRepository(db)

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}
	if cfg.Metrics.Enabled() {
		go serveMetrics(cfg.Metrics.Addr, collector, logger)
	}

	switch *mode {
	case "ingest":
		err = runIngest(ctx, cfg, events, ingestionErrors, collector, logger)
	case "clean":
		err = runClean(ctx, cfg, events, cleanEvents, logger)
	case "dedup":
		err = runDedup(ctx, events, logger)
	case "purge":
		err = runPurge(ctx, events, logger)
	default:
		logger.Error("unknown mode", "mode", *mode)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("run failed", "mode", *mode, "error", err)
		os.Exit(1)
	}
}

func runIngest(
	ctx context.Context,
	cfg config.Config,
	events *database.PostgresEventRepository,
	ingestionErrors *database.PostgresIngestionErrorRepository,
	collector *metrics.Collector,
	logger *slog.Logger,
) error {
	cities, err := ingestion.LoadCities(cfg.Pipeline.CitiesPath)
	if err != nil {
		return fmt.Errorf("failed to load city list: %w", err)
	}

	parser := ingestion.NewParser(cfg.Pipeline.DaysForward)
	client := ingestion.NewSearchClient(cfg.SerpAPI.APIKey, logger,
		ingestion.WithNearTermCutoff(parser.NearTerm(time.Now().UTC()), 0.5))

	var enricher ingestion.Enricher
	if cfg.Places.Enabled() {
		cache := enrichment.NewPlaceCache(cfg.Places.CacheTTL, cfg.Places.CacheMax)
		enricher = enrichment.NewPlacesEnricher(enrichment.NewPlacesClient(cfg.Places.APIKey), cache, logger)
	}

	var archiver ingestion.Archiver
	if cfg.Archive.Enabled() {
		archiver, err = archive.NewS3Archiver(ctx, cfg.Archive.Bucket, cfg.Archive.Prefix, logger)
		if err != nil {
			return fmt.Errorf("failed to init raw archive: %w", err)
		}
	}

	pipeCfg := ingestion.DefaultPipelineConfig()
	pipeCfg.MaxPages = cfg.Pipeline.MaxPages
	pipeCfg.MaxCities = cfg.Pipeline.MaxCities
	pipeCfg.Pacing = cfg.Pipeline.Pacing

	pipeline := ingestion.NewPipeline(client, parser, events, ingestionErrors, enricher, archiver, collector, logger, pipeCfg)
	summary, err := pipeline.Run(ctx, cities)
	fmt.Println(summary)
	return err
}

func runClean(
	ctx context.Context,
	cfg config.Config,
	events *database.PostgresEventRepository,
	cleanEvents *database.PostgresCleanEventRepository,
	logger *slog.Logger,
) error {
	var extractor cleaner.FieldExtractor
	if cfg.LLM.Enabled() {
		exCfg := enrichment.DefaultExtractorConfig()
		exCfg.APIKey = cfg.LLM.APIKey
		exCfg.BaseURL = cfg.LLM.BaseURL
		exCfg.Model = cfg.LLM.Model
		extractor = enrichment.NewExtractor(exCfg, logger)
	}

	stats, err := cleaner.New(events, cleanEvents, extractor, logger).Run(ctx)
	fmt.Printf("Cleaner: scanned=%d cleaned=%d dropped=%d excluded=%d rewrites=%d\n",
		stats.Scanned, stats.Cleaned, stats.Dropped, stats.Excluded, stats.RewriteAttempts)
	return err
}

func runDedup(ctx context.Context, events *database.PostgresEventRepository, logger *slog.Logger) error {
	stats, err := dedup.New(events, logger).Run(ctx)
	fmt.Printf("Dedup: scanned=%d groups=%d duplicates=%d\n", stats.Scanned, stats.Groups, stats.Duplicates)
	return err
}

func runPurge(ctx context.Context, events *database.PostgresEventRepository, logger *slog.Logger) error {
	// Keep today's events: only days strictly before the current UTC day age out.
	today := time.Now().UTC().Truncate(24 * time.Hour)
	purged, err := events.PurgePastEvents(ctx, today)
	if err != nil {
		return err
	}
	fmt.Printf("Purge: removed=%d\n", purged)
	return nil
}

func serveMetrics(addr string, collector *metrics.Collector, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics server stopped", "error", err)
	}
}

func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig, ok := <-c
		if !ok {
			return
		}
		logger.Info("received signal, stopping", "signal", sig.String())
		cancel()
	}()
	return ctx, func() {
		signal.Stop(c)
		close(c)
		cancel()
	}
}
