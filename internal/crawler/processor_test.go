package crawler_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openengine/openengine/internal/crawler"
	"github.com/openengine/openengine/internal/database"
	"github.com/openengine/openengine/internal/domain"
	"github.com/openengine/openengine/internal/frontier"
	"github.com/openengine/openengine/internal/logger"
	"github.com/openengine/openengine/internal/metrics"
)

type fakeEmbedder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (f *fakeEmbedder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, texts)
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{float32(i), 1}
	}
	return vectors, nil
}

type fakeVectorStore struct {
	mu      sync.Mutex
	upserts map[string]int
	err     error
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{upserts: make(map[string]int)}
}

func (f *fakeVectorStore) Upsert(_ context.Context, pageURL string, vectors [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts[pageURL] += len(vectors)
	return nil
}

type fakeResourceStore struct {
	mu     sync.Mutex
	visits []database.Visit
	rows   map[string][]string
	err    error
}

func newFakeResourceStore() *fakeResourceStore {
	return &fakeResourceStore{rows: make(map[string][]string)}
}

func (f *fakeResourceStore) Visits(context.Context) ([]database.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visits, f.err
}

func (f *fakeResourceStore) Upsert(_ context.Context, url string, _ time.Time, externalLinks []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows[url] = externalLinks
	return nil
}

type fakePotentialStore struct {
	mu       sync.Mutex
	recorded map[string]int
	err      error
}

func newFakePotentialStore() *fakePotentialStore {
	return &fakePotentialStore{recorded: make(map[string]int)}
}

func (f *fakePotentialStore) Record(_ context.Context, url string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recorded[url]++
	return nil
}

type fakeSeedStore struct {
	sites []domain.SeedSite
	err   error
}

func (f *fakeSeedStore) List(context.Context) ([]domain.SeedSite, error) {
	return f.sites, f.err
}

// processorHarness bundles one processor run's collaborators.
type processorHarness struct {
	pages      *frontier.Queue[crawler.ParsedPage]
	embedder   *fakeEmbedder
	vectors    *fakeVectorStore
	resources  *fakeResourceStore
	potentials *fakePotentialStore
	ctrl       *crawler.Controller
	messages   *crawler.Messages
	processor  *crawler.Processor
}

func newProcessorHarness(maxIterations int) *processorHarness {
	h := &processorHarness{
		pages:      frontier.NewQueue[crawler.ParsedPage](0),
		embedder:   &fakeEmbedder{},
		vectors:    newFakeVectorStore(),
		resources:  newFakeResourceStore(),
		potentials: newFakePotentialStore(),
		ctrl:       crawler.NewController(),
		messages:   crawler.NewMessages(0),
	}
	h.processor = crawler.NewProcessor(h.pages, h.embedder, h.vectors, h.resources,
		h.potentials, h.ctrl, h.messages, metrics.New(), logger.NewNoOp(),
		crawler.ProcessorConfig{MaxIterations: maxIterations})
	return h
}

func (h *processorHarness) enqueuePage(t *testing.T, pageURL, rawHTML string) {
	t.Helper()
	doc := parseHTML(t, rawHTML)
	require.NoError(t, h.pages.Enqueue(context.Background(),
		crawler.ParsedPage{Kind: crawler.KindWebpage, Doc: doc, URL: pageURL}))
}

func TestProcessor_EmbedsAndRegistersPage(t *testing.T) {
	h := newProcessorHarness(1)
	h.enqueuePage(t, "https://example.com/articles/go",
		`<html><body><p>Concurrency in practice</p></body></html>`)

	require.NoError(t, h.processor.Run(context.Background()))

	require.Len(t, h.embedder.calls, 1)
	assert.Equal(t, []string{"Concurrency in practice"}, h.embedder.calls[0])
	assert.Equal(t, 1, h.vectors.upserts["https://example.com/articles/go"])
	assert.Contains(t, h.resources.rows, "https://example.com/articles/go")
	assert.EqualValues(t, 1, h.processor.Iterations())
}

func TestProcessor_SegmentsLongPages(t *testing.T) {
	h := newProcessorHarness(1)
	// 1000 words splits into 450 + 450 + 100.
	longText := strings.Repeat("word ", 1000)
	h.enqueuePage(t, "https://example.com/long",
		"<html><body><p>"+longText+"</p></body></html>")

	require.NoError(t, h.processor.Run(context.Background()))

	require.Len(t, h.embedder.calls, 1)
	assert.Len(t, h.embedder.calls[0], 3)
	assert.Equal(t, 3, h.vectors.upserts["https://example.com/long"])
}

func TestProcessor_EmptyPageStoresNoVectors(t *testing.T) {
	h := newProcessorHarness(1)
	h.enqueuePage(t, "https://example.com/empty", "<html><body></body></html>")

	require.NoError(t, h.processor.Run(context.Background()))

	assert.Empty(t, h.embedder.calls)
	assert.Empty(t, h.vectors.upserts)
	// The page itself is still registered as crawled.
	assert.Contains(t, h.resources.rows, "https://example.com/empty")
}

func TestProcessor_ExternalLinksRecordedAsPotentials(t *testing.T) {
	h := newProcessorHarness(1)
	h.enqueuePage(t, "https://example.com/links", `<html><body>
		<a href="https://other.example.org/page">external</a>
		<a href="https://other.example.org/page#top">external dup</a>
		<a href="/local">root relative</a>
		<a href="#anchor">fragment</a>
		<a href="https://example.com/self">same site</a>
		<a href="">empty</a>
	</body></html>`)

	require.NoError(t, h.processor.Run(context.Background()))

	wantLinks := []string{"https://other.example.org/page"}
	assert.Equal(t, wantLinks, h.resources.rows["https://example.com/links"])
	assert.Equal(t, map[string]int{"https://other.example.org/page": 1}, h.potentials.recorded)
}

func TestProcessor_RelativeExternalLinksResolve(t *testing.T) {
	h := newProcessorHarness(1)
	// A path-relative href carries no origin, so it passes the external
	// filter and resolves against the page URL.
	h.enqueuePage(t, "https://example.com/docs/index.html",
		`<html><body><a href="guide.html">guide</a></body></html>`)

	require.NoError(t, h.processor.Run(context.Background()))

	assert.Equal(t, []string{"https://example.com/docs/guide.html"},
		h.resources.rows["https://example.com/docs/index.html"])
}

func TestProcessor_EmbedFailureStillRegistersResource(t *testing.T) {
	h := newProcessorHarness(1)
	h.embedder.err = errors.New("encoder down")
	h.enqueuePage(t, "https://example.com/page",
		"<html><body><p>some text</p></body></html>")

	require.NoError(t, h.processor.Run(context.Background()))

	assert.Empty(t, h.vectors.upserts)
	assert.Contains(t, h.resources.rows, "https://example.com/page")

	var failed bool
	for _, msg := range h.messages.Drain() {
		if strings.HasPrefix(msg, "processor: failed to store embeddings:") {
			failed = true
		}
	}
	assert.True(t, failed, "embed failure must surface on the message channel")
}

func TestProcessor_ResourceFailureSkipsPotentials(t *testing.T) {
	h := newProcessorHarness(1)
	h.resources.err = errors.New("db down")
	h.enqueuePage(t, "https://example.com/page",
		`<html><body><a href="https://other.example.org/x">x</a></body></html>`)

	require.NoError(t, h.processor.Run(context.Background()))

	assert.Empty(t, h.potentials.recorded,
		"potentials are only recorded after the resource row lands")
}

func TestProcessor_ExitsWhenEnded(t *testing.T) {
	h := newProcessorHarness(crawler.UnboundedIterations)
	h.ctrl.Stop()

	require.NoError(t, h.processor.Run(context.Background()))
	assert.Zero(t, h.processor.Iterations())
}

func TestProcessor_ExitsOnClosedQueue(t *testing.T) {
	h := newProcessorHarness(crawler.UnboundedIterations)
	h.enqueuePage(t, "https://example.com/a", "<html><body><p>a</p></body></html>")
	h.pages.Close()

	require.NoError(t, h.processor.Run(context.Background()))

	// The closed queue still drains before the processor exits.
	assert.Contains(t, h.resources.rows, "https://example.com/a")
	assert.EqualValues(t, 2, h.processor.Iterations())
}
