// Package embed turns content records and free-text queries into
// fixed-dimension vectors for the vector store.
package embed

import (
	"context"
	"fmt"
	"strings"

	"creatorcoach/internal/record"
	"creatorcoach/pkg/llm"
)

// Embedder wraps an embedding client with a fixed expected dimension.
// The dimension is probed once at startup; any vector of a different
// length afterwards indicates a model change and is rejected.
type Embedder struct {
	client llm.EmbeddingClient
	dims   int
}

func New(client llm.EmbeddingClient, dimensions int) (*Embedder, error) {
	if client == nil {
		return nil, fmt.Errorf("embed: client is required")
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("embed: dimensions must be positive, got %d", dimensions)
	}
	return &Embedder{client: client, dims: dimensions}, nil
}

// Dimensions returns the expected vector length.
func (e *Embedder) Dimensions() int {
	return e.dims
}

// Embed converts one text into a vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch converts texts into vectors, preserving order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("embed: texts are required")
	}
	vectors, err := e.client.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d texts", len(vectors), len(texts))
	}
	for i, vector := range vectors {
		if len(vector) != e.dims {
			return nil, fmt.Errorf("embed: vector %d has %d dimensions, expected %d", i, len(vector), e.dims)
		}
	}
	return vectors, nil
}

// EmbedRecord embeds a record's canonical document text and returns
// both. The document text is what gets stored alongside the vector;
// changing DocumentText invalidates existing vectors and requires a
// full reload.
func (e *Embedder) EmbedRecord(ctx context.Context, rec record.ContentRecord) ([]float32, string, error) {
	doc := DocumentText(rec)
	vector, err := e.Embed(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	return vector, doc, nil
}

// DocumentText is the canonical serialization of a record for
// embedding: caption, media type, date, the engagement metrics and the
// comma-joined hashtags.
func DocumentText(rec record.ContentRecord) string {
	return fmt.Sprintf(`Caption: %s
Content type: %s
Date: %s
Engagement rate: %g%%
Likes: %d
Comments: %d
Shares: %d
Saves: %d
Reach: %d
Impressions: %d
Hashtags: %s`,
		rec.Caption,
		rec.MediaType,
		rec.Timestamp,
		rec.Metrics.EngagementRate,
		rec.Metrics.Likes,
		rec.Metrics.Comments,
		rec.Metrics.Shares,
		rec.Metrics.Saves,
		rec.Metrics.Reach,
		rec.Metrics.Impressions,
		strings.Join(rec.Hashtags, ", "))
}
