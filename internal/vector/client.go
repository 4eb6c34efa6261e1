// Package vector provides the qdrant-backed embedding store: collection
// provisioning, per-page upserts, and similarity queries.
package vector

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/openengine/openengine/internal/config"
)

// Client wraps the qdrant gRPC client for the embeddings collection.
type Client struct {
	qdrant     *qdrant.Client
	collection string
	dimension  uint64
}

// NewClient connects to qdrant using the configured host and port.
func NewClient(cfg config.QdrantConfig, dimension int) (*Client, error) {
	host, err := hostOf(cfg.URL)
	if err != nil {
		return nil, err
	}

	qc, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: cfg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Client{
		qdrant:     qc,
		collection: cfg.Collection,
		dimension:  uint64(dimension),
	}, nil
}

// hostOf accepts either a bare host or a URL and returns the host part.
func hostOf(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		return raw, nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("invalid qdrant url %q", raw)
	}
	return parsed.Hostname(), nil
}

// EnsureCollection creates the embeddings collection with cosine distance if
// it does not exist. Idempotent.
func (c *Client) EnsureCollection(ctx context.Context) error {
	exists, err := c.qdrant.CollectionExists(ctx, c.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %q: %w", c.collection, err)
	}
	if exists {
		return nil
	}

	err = c.qdrant.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     c.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %q: %w", c.collection, err)
	}

	return nil
}

// Upsert stores one page's segment vectors. Each point gets a fresh UUID and
// carries the page url under payload.text.url. The call waits for the write
// to be acknowledged.
func (c *Client) Upsert(ctx context.Context, pageURL string, vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(vectors))
	for _, vec := range vectors {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text": map[string]any{"url": pageURL},
			}),
		})
	}

	_, err := c.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}

	return nil
}

// Match is one scored point from a similarity query.
type Match struct {
	URL   string
	Score float32
}

// Query returns the closest points to the given vector with their page urls.
func (c *Client) Query(ctx context.Context, vec []float32, limit uint64) ([]Match, error) {
	points, err := c.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %q: %w", c.collection, err)
	}

	matches := make([]Match, 0, len(points))
	for _, p := range points {
		matches = append(matches, Match{
			URL:   payloadURL(p.GetPayload()),
			Score: p.GetScore(),
		})
	}

	return matches, nil
}

// payloadURL digs payload.text.url out of a point payload.
func payloadURL(payload map[string]*qdrant.Value) string {
	text, ok := payload["text"]
	if !ok {
		return ""
	}
	fields := text.GetStructValue().GetFields()
	if fields == nil {
		return ""
	}
	return fields["url"].GetStringValue()
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.qdrant.Close()
}
