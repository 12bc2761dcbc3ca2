package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProbeEmbeddingDimensions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIEmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		resp := map[string]any{"data": []map[string]any{}}
		for range req.Input {
			resp["data"] = append(resp["data"].([]map[string]any), map[string]any{
				"embedding": []float32{0.1, 0.2, 0.3, 0.4},
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := NewEmbeddingClient(Config{Provider: "openai", Model: "test-embed", APIURL: srv.URL})
	if err != nil {
		t.Fatalf("NewEmbeddingClient: %v", err)
	}

	dims, err := ProbeEmbeddingDimensions(context.Background(), client)
	if err != nil {
		t.Fatalf("ProbeEmbeddingDimensions: %v", err)
	}
	if dims != 4 {
		t.Fatalf("expected 4 dimensions, got %d", dims)
	}
}

func TestEmbedRequiresInputs(t *testing.T) {
	client, err := NewEmbeddingClient(Config{Provider: "openai", Model: "test-embed"})
	if err != nil {
		t.Fatalf("NewEmbeddingClient: %v", err)
	}
	if _, err := client.Embed(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty inputs")
	}
}

func TestNewEmbeddingClientRequiresModel(t *testing.T) {
	if _, err := NewEmbeddingClient(Config{Provider: "openai"}); err == nil {
		t.Fatal("expected error for missing model")
	}
}
