// Package metrics provides prometheus collectors for the crawl pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Crawl state gauge values.
const (
	StateIdle    = 0
	StateRunning = 1
	StatePaused  = 2
)

// Metrics holds the pipeline collectors. All collectors are registered on a
// private registry so tests can create instances freely.
type Metrics struct {
	registry *prometheus.Registry

	PagesFetched     prometheus.Counter
	FetchErrors      prometheus.Counter
	PagesProcessed   prometheus.Counter
	ProcessErrors    prometheus.Counter
	EmbeddingsStored prometheus.Counter
	LinksDiscovered  prometheus.Counter
	LinksEnqueued    prometheus.Counter

	FetcherIterations   prometheus.Counter
	ProcessorIterations prometheus.Counter

	URLQueueDepth    prometheus.Gauge
	ParsedQueueDepth prometheus.Gauge
	CrawlState       prometheus.Gauge
}

// New creates a metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "openengine_pages_fetched_total",
			Help: "Pages fetched with a 200 response.",
		}),
		FetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "openengine_fetch_errors_total",
			Help: "Fetches that failed or returned a non-200 status.",
		}),
		PagesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "openengine_pages_processed_total",
			Help: "Parsed pages turned into embeddings and registered.",
		}),
		ProcessErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "openengine_process_errors_total",
			Help: "Pages whose embedding or persistence failed.",
		}),
		EmbeddingsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "openengine_embeddings_stored_total",
			Help: "Embedding points upserted into the vector store.",
		}),
		LinksDiscovered: factory.NewCounter(prometheus.CounterOpts{
			Name: "openengine_links_discovered_total",
			Help: "Hrefs collected from fetched pages before filtering.",
		}),
		LinksEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "openengine_links_enqueued_total",
			Help: "Unseen whitelisted links added to the URL queue.",
		}),
		FetcherIterations: factory.NewCounter(prometheus.CounterOpts{
			Name: "openengine_fetcher_iterations_total",
			Help: "Fetcher loop iterations, successful or not.",
		}),
		ProcessorIterations: factory.NewCounter(prometheus.CounterOpts{
			Name: "openengine_processor_iterations_total",
			Help: "Processor loop iterations, successful or not.",
		}),
		URLQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "openengine_url_queue_depth",
			Help: "URLs pending fetch.",
		}),
		ParsedQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "openengine_parsed_queue_depth",
			Help: "Parsed pages pending processing.",
		}),
		CrawlState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "openengine_crawl_state",
			Help: "Crawl lifecycle state: 0 idle, 1 running, 2 paused.",
		}),
	}
}

// Handler returns the exposition handler for the /metrics route.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
