// Package search implements query-time ranking: embed the query, pull the
// closest points from the vector store, and aggregate scores per page.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/openengine/openengine/internal/domain"
	"github.com/openengine/openengine/internal/vector"
)

const (
	// defaultFetchLimit is how many points are pulled from the vector store.
	defaultFetchLimit = 50
	// defaultResultLimit is how many ranked pages are returned.
	defaultResultLimit = 30
)

// Embedder encodes texts into vectors. Satisfied by the embedder client.
type Embedder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Querier pulls scored matches from the vector store. Satisfied by the
// vector client.
type Querier interface {
	Query(ctx context.Context, vec []float32, limit uint64) ([]vector.Match, error)
}

// Service ranks pages by aggregated semantic similarity.
type Service struct {
	embedder    Embedder
	querier     Querier
	fetchLimit  uint64
	resultLimit int
}

// NewService creates a search service with the default limits.
func NewService(emb Embedder, q Querier) *Service {
	return &Service{
		embedder:    emb,
		querier:     q,
		fetchLimit:  defaultFetchLimit,
		resultLimit: defaultResultLimit,
	}
}

// Search embeds the query, fetches the closest points, sums the scores of
// points sharing a page url, and returns pages ordered by summed score.
func (s *Service) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	vectors, err := s.embedder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query vector, got %d", len(vectors))
	}

	matches, err := s.querier.Query(ctx, vectors[0], s.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("query vector store: %w", err)
	}

	scores := make(map[string]float32, len(matches))
	for _, match := range matches {
		if match.URL == "" {
			continue
		}
		scores[match.URL] += match.Score
	}

	results := make([]domain.SearchResult, 0, len(scores))
	for url, score := range scores {
		results = append(results, domain.SearchResult{URL: url, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].URL < results[j].URL
	})

	if len(results) > s.resultLimit {
		results = results[:s.resultLimit]
	}

	return results, nil
}
