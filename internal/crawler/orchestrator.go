package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openengine/openengine/internal/config"
	"github.com/openengine/openengine/internal/frontier"
	"github.com/openengine/openengine/internal/logger"
	"github.com/openengine/openengine/internal/metrics"
)

// Options controls one crawl run.
type Options struct {
	// Whitelist holds the regex patterns scoping the crawl. Empty means
	// default to the base origins of the seed sites.
	Whitelist []string
	// MaxIterations bounds each worker's loop; UnboundedIterations means
	// run until stopped.
	MaxIterations int
	// RevisitDelta is the minimum age of lastVisited before a crawled URL
	// re-enters the frontier.
	RevisitDelta time.Duration
	// ParsedCapacity bounds the parsed-page queue.
	ParsedCapacity int
	// FetchTimeout bounds each HTTP GET.
	FetchTimeout time.Duration
}

// withDefaults fills zero values from package defaults.
func (o Options) withDefaults() Options {
	if o.MaxIterations == 0 {
		o.MaxIterations = UnboundedIterations
	}
	if o.RevisitDelta == 0 {
		o.RevisitDelta = config.DefaultRevisitDelta
	}
	if o.ParsedCapacity == 0 {
		o.ParsedCapacity = config.DefaultParsedCapacity
	}
	if o.FetchTimeout == 0 {
		o.FetchTimeout = config.DefaultFetchTimeout
	}
	return o
}

// Orchestrator composes the initial work set from persisted state, launches
// the Fetcher and Processor, and tears the crawl down once both exit.
type Orchestrator struct {
	seeds      SeedStore
	resources  ResourceStore
	potentials PotentialStore
	embedder   Embedder
	vectors    VectorStore
	metrics    *metrics.Metrics
	log        logger.Interface
}

// NewOrchestrator creates an orchestrator over the given collaborators.
func NewOrchestrator(
	seeds SeedStore,
	resources ResourceStore,
	potentials PotentialStore,
	emb Embedder,
	vectors VectorStore,
	m *metrics.Metrics,
	log logger.Interface,
) *Orchestrator {
	return &Orchestrator{
		seeds:      seeds,
		resources:  resources,
		potentials: potentials,
		embedder:   emb,
		vectors:    vectors,
		metrics:    m,
		log:        log.WithComponent("orchestrator"),
	}
}

// Run executes one crawl and returns after both workers have exited. Worker
// failures are joined into a composite error; a bootstrap failure aborts
// before anything is launched. The controller and messages are created by
// the caller so the admin surface can signal a crawl it did not start.
func (o *Orchestrator) Run(ctx context.Context, ctrl *Controller, messages *Messages, opts Options) error {
	opts = opts.withDefaults()

	urls := frontier.NewQueue[string](0)
	pages := frontier.NewQueue[ParsedPage](opts.ParsedCapacity)
	seen := frontier.NewSeenSet()

	whitelist, err := o.bootstrap(ctx, urls, seen, opts)
	if err != nil {
		return fmt.Errorf("crawl bootstrap: %w", err)
	}

	// End must wake workers blocked in a dequeue.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctrl.Done()
		cancel()
	}()

	fetcher := NewFetcher(urls, pages, seen, whitelist, ctrl, messages, o.metrics, o.log,
		&http.Client{Timeout: opts.FetchTimeout},
		FetcherConfig{MaxIterations: opts.MaxIterations})
	processor := NewProcessor(pages, o.embedder, o.vectors, o.resources, o.potentials,
		ctrl, messages, o.metrics, o.log,
		ProcessorConfig{MaxIterations: opts.MaxIterations})

	o.metrics.CrawlState.Set(metrics.StateRunning)
	defer o.metrics.CrawlState.Set(metrics.StateIdle)

	fetchDone := make(chan error, 1)
	procDone := make(chan error, 1)

	go func() {
		fetchDone <- fetcher.Run(runCtx)
		// No more pages will arrive; let the processor drain and exit.
		pages.Close()
	}()
	go func() {
		procDone <- processor.Run(runCtx)
		// Nothing consumes pages anymore; unblock a fetcher waiting on a
		// full queue.
		pages.Close()
	}()

	fetchErr := <-fetchDone
	procErr := <-procDone

	if fetchErr != nil {
		fetchErr = fmt.Errorf("fetcher: %w", fetchErr)
	}
	if procErr != nil {
		procErr = fmt.Errorf("processor: %w", procErr)
	}

	o.log.Info("Crawl finished",
		"fetcher_iterations", fetcher.Iterations(),
		"processor_iterations", processor.Iterations(),
		"seen_urls", seen.Len())

	return errors.Join(fetchErr, procErr)
}

// bootstrap builds the initial work set: every seed site url and url+suffix,
// plus every crawled resource stale enough for a revisit. Resources not
// selected for revisit pre-populate the seen set. When the caller supplied
// no whitelist the seed origins become the whitelist.
func (o *Orchestrator) bootstrap(
	ctx context.Context,
	urls *frontier.Queue[string],
	seen *frontier.SeenSet,
	opts Options,
) (*frontier.Whitelist, error) {
	sites, err := o.seeds.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list seed sites: %w", err)
	}

	var toSearch []string
	baseURLs := make([]string, 0, len(sites))
	for _, site := range sites {
		baseURLs = append(baseURLs, site.URL)
		for _, suffix := range site.Seeds {
			toSearch = append(toSearch, site.URL+suffix)
		}
	}
	toSearch = append(toSearch, baseURLs...)

	visits, err := o.resources.Visits(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resource visits: %w", err)
	}

	now := time.Now()
	for _, visit := range visits {
		if now.Sub(visit.LastVisited) > opts.RevisitDelta {
			toSearch = append(toSearch, visit.URL)
		} else {
			seen.Add(visit.URL)
		}
	}

	patterns := opts.Whitelist
	if len(patterns) == 0 {
		patterns = baseURLs
	}
	whitelist, err := frontier.CompileWhitelist(patterns)
	if err != nil {
		return nil, err
	}

	for _, u := range toSearch {
		if err := urls.Enqueue(ctx, u); err != nil {
			return nil, fmt.Errorf("enqueue initial url: %w", err)
		}
	}
	o.metrics.URLQueueDepth.Set(float64(urls.Len()))

	o.log.Info("Crawl bootstrapped",
		"initial_urls", len(toSearch),
		"seen_urls", seen.Len(),
		"whitelist_patterns", len(patterns))

	return whitelist, nil
}
