package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"

	"github.com/openengine/openengine/internal/frontier"
	"github.com/openengine/openengine/internal/logger"
	"github.com/openengine/openengine/internal/metrics"
)

// maxResponseBodyBytes limits the size of fetched page responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// UnboundedIterations disables the per-worker iteration cap.
const UnboundedIterations = -1

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	// MaxIterations bounds loop iterations; UnboundedIterations disables it.
	MaxIterations int
}

// Fetcher dequeues URLs, fetches and parses them, hands parsed pages to the
// Processor, and feeds newly discovered links back into the URL queue.
type Fetcher struct {
	urls       *frontier.Queue[string]
	pages      *frontier.Queue[ParsedPage]
	seen       *frontier.SeenSet
	whitelist  *frontier.Whitelist
	ctrl       *Controller
	messages   *Messages
	metrics    *metrics.Metrics
	log        logger.Interface
	httpClient *http.Client
	maxIter    int
	iterations atomic.Int64
}

// NewFetcher creates a fetcher. The http client carries the fetch timeout
// and follows redirects.
func NewFetcher(
	urls *frontier.Queue[string],
	pages *frontier.Queue[ParsedPage],
	seen *frontier.SeenSet,
	whitelist *frontier.Whitelist,
	ctrl *Controller,
	messages *Messages,
	m *metrics.Metrics,
	log logger.Interface,
	httpClient *http.Client,
	cfg FetcherConfig,
) *Fetcher {
	return &Fetcher{
		urls:       urls,
		pages:      pages,
		seen:       seen,
		whitelist:  whitelist,
		ctrl:       ctrl,
		messages:   messages,
		metrics:    m,
		log:        log.WithComponent("fetcher"),
		httpClient: httpClient,
		maxIter:    cfg.MaxIterations,
	}
}

// Iterations returns the number of loop entries so far.
func (f *Fetcher) Iterations() int64 {
	return f.iterations.Load()
}

// Run executes the fetch loop until the crawl ends, the iteration cap is
// reached, or a queue is structurally closed. Per-URL failures never
// terminate the loop.
func (f *Fetcher) Run(ctx context.Context) error {
	for {
		switch f.ctrl.Check() {
		case StateEnded:
			return nil
		case StatePaused:
			f.messages.Publish("fetcher: paused, waiting for resume signal")
			if f.ctrl.AwaitResume() == StateEnded {
				return nil
			}
			f.messages.Publish("fetcher: resumed, continuing crawling")
		case StateRunning:
		}

		if f.maxIter != UnboundedIterations && f.iterations.Load() >= int64(f.maxIter) {
			return nil
		}
		f.iterations.Add(1)
		f.metrics.FetcherIterations.Inc()

		url, err := f.urls.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, frontier.ErrQueueClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetcher dequeue: %w", err)
		}
		f.metrics.URLQueueDepth.Set(float64(f.urls.Len()))

		f.messages.Publish("fetcher: crawling url: " + url)
		f.log.Debug("Fetching URL", "url", url)

		doc, ok := f.fetch(ctx, url)
		if !ok {
			continue
		}
		f.metrics.PagesFetched.Inc()

		if err := f.pages.Enqueue(ctx, ParsedPage{Kind: KindWebpage, Doc: doc, URL: url}); err != nil {
			if errors.Is(err, frontier.ErrQueueClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetcher enqueue page: %w", err)
		}
		f.metrics.ParsedQueueDepth.Set(float64(f.pages.Len()))

		if err := f.harvestLinks(ctx, doc, url); err != nil {
			return err
		}
	}
}

// fetch performs the HTTP GET and parses the body as HTML. Any failure is
// reported through the message channel and skipped.
func (f *Fetcher) fetch(ctx context.Context, url string) (*goquery.Document, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		f.skip(url, fmt.Sprintf("invalid url: %v", err))
		return nil, false
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.skip(url, fmt.Sprintf("request failed: %v", err))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.skip(url, fmt.Sprintf("response status was %d", resp.StatusCode))
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		f.skip(url, fmt.Sprintf("parse failed: %v", err))
		return nil, false
	}

	return doc, true
}

// skip records a non-fatal per-URL failure.
func (f *Fetcher) skip(url, reason string) {
	f.metrics.FetchErrors.Inc()
	f.messages.Publish("fetcher: failed to get response for url: " + url)
	f.messages.Publish("fetcher: " + reason)
	f.messages.Publish("fetcher: skipping...")
	f.log.Warn("Skipping URL", "url", url, "reason", reason)
}

// harvestLinks runs the discovery pipeline: collect hrefs, canonicalize and
// dedup, resolve to absolute form, whitelist, sort, then enqueue whatever
// the seen set has not accounted for yet.
func (f *Fetcher) harvestLinks(ctx context.Context, doc *goquery.Document, pageURL string) error {
	var hrefs []string
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if href, exists := sel.Attr("href"); exists {
			hrefs = append(hrefs, href)
		}
	})
	f.metrics.LinksDiscovered.Add(float64(len(hrefs)))

	baseSite, err := frontier.BaseSite(pageURL)
	if err != nil {
		f.log.Warn("No base site for page", "url", pageURL, "error", err)
		return nil
	}

	links := frontier.Dedup(hrefs)
	for i, link := range links {
		links[i] = frontier.Resolve(link, pageURL, baseSite)
	}
	links = f.whitelist.Filter(links)
	sort.Strings(links)

	for _, link := range links {
		if !f.seen.Add(link) {
			continue
		}
		if err := f.urls.Enqueue(ctx, link); err != nil {
			if errors.Is(err, frontier.ErrQueueClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetcher enqueue link: %w", err)
		}
		f.metrics.LinksEnqueued.Inc()
	}
	f.metrics.URLQueueDepth.Set(float64(f.urls.Len()))

	return nil
}
