package crawler

import (
	"context"
	"time"

	"github.com/openengine/openengine/internal/database"
	"github.com/openengine/openengine/internal/domain"
)

// SeedStore reads the operator-curated seed sites during bootstrap.
type SeedStore interface {
	List(ctx context.Context) ([]domain.SeedSite, error)
}

// ResourceStore reads visit history during bootstrap and registers pages as
// the Processor completes them.
type ResourceStore interface {
	Visits(ctx context.Context) ([]database.Visit, error)
	Upsert(ctx context.Context, url string, visited time.Time, externalLinks []string) error
}

// PotentialStore records external links the Processor observes but the crawl
// never fetches.
type PotentialStore interface {
	Record(ctx context.Context, url string, seen time.Time) error
}

// Embedder encodes a batch of text segments into fixed-dimensionality
// vectors, one per segment, in input order.
type Embedder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore persists one page's segment vectors in a single acknowledged
// upsert.
type VectorStore interface {
	Upsert(ctx context.Context, pageURL string, vectors [][]float32) error
}
