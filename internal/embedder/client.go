// Package embedder provides the HTTP client for the sentence-embedding
// service. The service exposes a batch /embed endpoint that takes a list of
// strings and returns one fixed-dimensionality float vector per string.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/openengine/openengine/internal/config"
)

// maxBatchSize caps the number of texts sent in one request. Larger inputs
// fan out over several requests, order preserved.
const maxBatchSize = 32

// maxResponseBytes limits the size of an embedding response body.
const maxResponseBytes = 32 * 1024 * 1024

// ErrDimensionMismatch is returned when the service produces vectors of the
// wrong length for the configured model.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// embedRequest is the request body for the /embed endpoint.
type embedRequest struct {
	Inputs []string `json:"inputs"`
}

// Client calls the embedding service.
type Client struct {
	baseURL    string
	dimension  int
	httpClient *http.Client
}

// NewClient creates an embedding client from configuration.
func NewClient(cfg config.EmbedderConfig) *Client {
	return &Client{
		baseURL:    cfg.URL,
		dimension:  cfg.Dimension,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Dimension returns the vector length the client expects.
func (c *Client) Dimension() int {
	return c.dimension
}

// Encode embeds a batch of texts, one vector per text in input order. An
// empty input returns an empty result without a request.
func (c *Client) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))
		g.Go(func() error {
			batch, err := c.encodeBatch(gctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// encodeBatch performs one /embed request.
func (c *Client) encodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read embed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed request returned status %d: %s", resp.StatusCode, raw)
	}

	var vectors [][]float32
	if err := json.Unmarshal(raw, &vectors); err != nil {
		return nil, fmt.Errorf("failed to decode embed response: %w", err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed response has %d vectors for %d texts", len(vectors), len(texts))
	}
	for _, vec := range vectors {
		if len(vec) != c.dimension {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), c.dimension)
		}
	}

	return vectors, nil
}
