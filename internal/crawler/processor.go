package crawler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/openengine/openengine/internal/frontier"
	"github.com/openengine/openengine/internal/logger"
	"github.com/openengine/openengine/internal/metrics"
)

// storeOpTimeout bounds each persistence call. Derived from the background
// context, not the crawl context, so End never aborts a half-done write.
const storeOpTimeout = 10 * time.Second

// ProcessorConfig configures a Processor.
type ProcessorConfig struct {
	// MaxIterations bounds loop iterations; UnboundedIterations disables it.
	MaxIterations int
}

// Processor drains parsed pages, embeds their visible text segment by
// segment, and persists embeddings and page metadata.
type Processor struct {
	pages      *frontier.Queue[ParsedPage]
	embedder   Embedder
	vectors    VectorStore
	resources  ResourceStore
	potentials PotentialStore
	ctrl       *Controller
	messages   *Messages
	metrics    *metrics.Metrics
	log        logger.Interface
	maxIter    int
	iterations atomic.Int64
}

// NewProcessor creates a processor.
func NewProcessor(
	pages *frontier.Queue[ParsedPage],
	emb Embedder,
	vectors VectorStore,
	resources ResourceStore,
	potentials PotentialStore,
	ctrl *Controller,
	messages *Messages,
	m *metrics.Metrics,
	log logger.Interface,
	cfg ProcessorConfig,
) *Processor {
	return &Processor{
		pages:      pages,
		embedder:   emb,
		vectors:    vectors,
		resources:  resources,
		potentials: potentials,
		ctrl:       ctrl,
		messages:   messages,
		metrics:    m,
		log:        log.WithComponent("processor"),
		maxIter:    cfg.MaxIterations,
	}
}

// Iterations returns the number of loop entries so far.
func (p *Processor) Iterations() int64 {
	return p.iterations.Load()
}

// Run executes the processing loop until the crawl ends, the iteration cap
// is reached, or the parsed queue is closed and drained. Embedding and store
// failures are reported and skipped, never fatal.
func (p *Processor) Run(ctx context.Context) error {
	for {
		switch p.ctrl.Check() {
		case StateEnded:
			return nil
		case StatePaused:
			p.messages.Publish("processor: paused")
			if p.ctrl.AwaitResume() == StateEnded {
				return nil
			}
			p.messages.Publish("processor: resumed")
		case StateRunning:
		}

		if p.maxIter != UnboundedIterations && p.iterations.Load() >= int64(p.maxIter) {
			return nil
		}
		p.iterations.Add(1)
		p.metrics.ProcessorIterations.Inc()

		page, err := p.pages.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, frontier.ErrQueueClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("processor dequeue: %w", err)
		}
		p.metrics.ParsedQueueDepth.Set(float64(p.pages.Len()))

		if page.Kind != KindWebpage {
			continue
		}

		p.processPage(ctx, page)
	}
}

// processPage embeds one page and registers it. Each step's failure is
// logged and the rest of the steps still run where that makes sense.
func (p *Processor) processPage(ctx context.Context, page ParsedPage) {
	p.messages.Publish("processor: processing webpage into vectors and meta...")
	start := time.Now()

	if err := p.embedAndStore(ctx, page); err != nil {
		p.metrics.ProcessErrors.Inc()
		p.messages.Publish("processor: failed to store embeddings: " + err.Error())
		p.log.Error("Failed to store embeddings", "url", page.URL, "error", err)
	} else {
		p.messages.Publish(fmt.Sprintf(
			"processor: finished processing webpage in %s", time.Since(start)))
	}

	links := externalLinks(page.Doc, page.URL)

	if err := p.registerResource(page.URL, links); err != nil {
		p.metrics.ProcessErrors.Inc()
		p.log.Error("Failed to register resource", "url", page.URL, "error", err)
		return
	}
	p.metrics.PagesProcessed.Inc()

	p.recordPotentials(links)
}

// embedAndStore segments the page's visible text, encodes all segments in
// one batch, and upserts the vectors. A page with no visible text stores
// nothing.
func (p *Processor) embedAndStore(ctx context.Context, page ParsedPage) error {
	segments := Segment(VisibleText(page.Doc), maxSegmentWords)
	if len(segments) == 0 {
		return nil
	}

	vectors, err := p.embedder.Encode(ctx, segments)
	if err != nil {
		return fmt.Errorf("encode %d segments: %w", len(segments), err)
	}

	opCtx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()

	if err := p.vectors.Upsert(opCtx, page.URL, vectors); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	p.metrics.EmbeddingsStored.Add(float64(len(vectors)))

	return nil
}

// registerResource upserts the page row: insert on first visit, bump
// lastVisited and allVisits and refresh externalLinks on revisits.
func (p *Processor) registerResource(url string, links []string) error {
	opCtx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()

	return p.resources.Upsert(opCtx, url, time.Now(), links)
}

// recordPotentials notes every external link as a potential url. Failures
// are logged per link and do not stop the rest.
func (p *Processor) recordPotentials(links []string) {
	for _, link := range links {
		opCtx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
		err := p.potentials.Record(opCtx, link, time.Now())
		cancel()
		if err != nil {
			p.log.Warn("Failed to record potential url", "url", link, "error", err)
		}
	}
}

// externalLinks collects the hrefs pointing outside the page's own origin:
// non-empty, not fragment- or root-relative, and not containing the page's
// base site. The result is canonical, absolute, and sorted.
func externalLinks(doc *goquery.Document, pageURL string) []string {
	baseSite, err := frontier.BaseSite(pageURL)
	if err != nil {
		return nil
	}

	var hrefs []string
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}
		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "/") {
			return
		}
		if strings.Contains(href, baseSite) {
			return
		}
		hrefs = append(hrefs, href)
	})

	links := frontier.Dedup(hrefs)
	for i, link := range links {
		links[i] = frontier.Resolve(link, pageURL, baseSite)
	}
	sort.Strings(links)

	return links
}
