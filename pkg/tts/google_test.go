package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSynthesize(t *testing.T) {
	audio := []byte("fake-mp3-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Goog-Api-Key"); got != "test-key" {
			t.Errorf("expected API key header, got %q", got)
		}
		var req synthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.AudioConfig.AudioEncoding != "MP3" {
			t.Errorf("expected MP3 encoding, got %q", req.AudioConfig.AudioEncoding)
		}
		if req.Input.Text != "hello" {
			t.Errorf("unexpected input text %q", req.Input.Text)
		}
		json.NewEncoder(w).Encode(synthesizeResponse{
			AudioContent: base64.StdEncoding.EncodeToString(audio),
		})
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		APIKey:       "test-key",
		Endpoint:     srv.URL,
		LanguageCode: "en-US",
		VoiceName:    "en-US-Neural2-F",
		SpeakingRate: 1.0,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	got, err := client.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !bytes.Equal(got, audio) {
		t.Fatalf("audio mismatch: got %q", got)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Synthesize(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
