// Package metrics exposes Prometheus counters for pipeline runs. A run is a
// batch, so the counters are primarily scraped from the optional metrics
// endpoint during long runs and read back into the run summary at the end.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the pipeline's Prometheus metrics on a private registry.
// A nil *Collector is valid and disables metrics entirely.
type Collector struct {
	registry *prometheus.Registry

	apiRequests    prometheus.Counter
	apiErrors      prometheus.Counter
	eventsFound    prometheus.Counter
	eventsParsed   prometheus.Counter
	eventsRejected *prometheus.CounterVec
	upserts        *prometheus.CounterVec
	enrichments    *prometheus.CounterVec
}

// NewCollector constructs a collector with the pipeline counters registered.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		apiRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dancepulse",
			Subsystem: "ingest",
			Name:      "api_requests_total",
			Help:      "Total search API page requests, including retries.",
		}),
		apiErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dancepulse",
			Subsystem: "ingest",
			Name:      "api_errors_total",
			Help:      "Search API fetches that failed after retries.",
		}),
		eventsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dancepulse",
			Subsystem: "ingest",
			Name:      "events_found_total",
			Help:      "Raw events returned by the search API.",
		}),
		eventsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dancepulse",
			Subsystem: "ingest",
			Name:      "events_parsed_total",
			Help:      "Raw events successfully normalized.",
		}),
		eventsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dancepulse",
			Subsystem: "ingest",
			Name:      "events_rejected_total",
			Help:      "Raw events dropped during parsing, by reason.",
		}, []string{"reason"}),
		upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dancepulse",
			Subsystem: "ingest",
			Name:      "upserts_total",
			Help:      "Store upserts, by result.",
		}, []string{"result"}),
		enrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dancepulse",
			Subsystem: "ingest",
			Name:      "enrichment_attempts_total",
			Help:      "Enrichment adapter calls, by adapter and result.",
		}, []string{"adapter", "result"}),
	}

	for _, collector := range []prometheus.Collector{
		c.apiRequests, c.apiErrors, c.eventsFound, c.eventsParsed,
		c.eventsRejected, c.upserts, c.enrichments,
	} {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Handler returns an HTTP handler exposing the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) AddAPIRequests(n int) {
	if c != nil {
		c.apiRequests.Add(float64(n))
	}
}

func (c *Collector) IncAPIError() {
	if c != nil {
		c.apiErrors.Inc()
	}
}

func (c *Collector) AddEventsFound(n int) {
	if c != nil {
		c.eventsFound.Add(float64(n))
	}
}

func (c *Collector) IncEventParsed() {
	if c != nil {
		c.eventsParsed.Inc()
	}
}

func (c *Collector) IncEventRejected(reason string) {
	if c != nil {
		c.eventsRejected.WithLabelValues(reason).Inc()
	}
}

func (c *Collector) IncUpsert(ok bool) {
	if c == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.upserts.WithLabelValues(result).Inc()
}

func (c *Collector) IncEnrichment(adapter string, ok bool) {
	if c == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.enrichments.WithLabelValues(adapter, result).Inc()
}
