package embed

import (
	"context"
	"strings"
	"testing"

	"creatorcoach/internal/record"
)

type stubClient struct {
	dims int
}

func (s *stubClient) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	vectors := make([][]float32, len(inputs))
	for i := range inputs {
		vectors[i] = make([]float32, s.dims)
		vectors[i][0] = float32(len(inputs[i]))
	}
	return vectors, nil
}

func TestEmbedBatchPreservesOrderAndDimensions(t *testing.T) {
	e, err := New(&stubClient{dims: 4}, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vectors, err := e.EmbedBatch(context.Background(), []string{"ab", "abcd"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 2 || vectors[1][0] != 4 {
		t.Fatalf("order not preserved: %v", vectors)
	}
}

func TestEmbedRejectsWrongDimension(t *testing.T) {
	e, err := New(&stubClient{dims: 3}, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestDocumentTextFields(t *testing.T) {
	rec := record.ContentRecord{
		Caption:   "Sunset timelapse",
		MediaType: record.MediaReel,
		Timestamp: "2026-05-12T08:30:00Z",
		Metrics: record.Metrics{
			Likes: 10, Comments: 2, Shares: 1, Saves: 4,
			Reach: 500, Impressions: 700, EngagementRate: 3.4,
		},
		Hashtags: []string{"sunset", "timelapse"},
	}
	doc := DocumentText(rec)

	for _, want := range []string{
		"Caption: Sunset timelapse",
		"Content type: reel",
		"Engagement rate: 3.4%",
		"Likes: 10",
		"Comments: 2",
		"Shares: 1",
		"Saves: 4",
		"Reach: 500",
		"Impressions: 700",
		"Hashtags: sunset, timelapse",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
}
