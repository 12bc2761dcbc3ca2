package record

import (
	"reflect"
	"testing"
)

func sampleMetadata() map[string]any {
	return map[string]any{
		"caption":    "Morning routine that changed everything",
		"media_type": MediaReel,
		"timestamp":  "2026-05-12T08:30:00Z",
		"media_url":  "https://example.com/p/abc",
		"rate_basis": RateBasisFollowers,
		"metrics": map[string]any{
			"likes":              1520,
			"comments":           89,
			"shares":             42,
			"saves":              130,
			"reach":              25000,
			"impressions":        31000,
			"engagement_rate":    7.1,
			"total_interactions": 1781,
		},
		"hashtags": []string{"morning", "routine", "wellness"},
	}
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	meta := sampleMetadata()
	got := Unflatten(Flatten(meta))
	if !reflect.DeepEqual(got, meta) {
		t.Fatalf("round trip mismatch:\n got  %#v\n want %#v", got, meta)
	}
}

func TestFlattenMetricsPrefix(t *testing.T) {
	flat := Flatten(sampleMetadata())
	if flat["metrics_likes"] != 1520 {
		t.Fatalf("expected metrics_likes=1520, got %v", flat["metrics_likes"])
	}
	if _, ok := flat["metrics"]; ok {
		t.Fatal("nested metrics map leaked into flat shape")
	}
	if flat["hashtags"] != "morning,routine,wellness" {
		t.Fatalf("expected comma-joined hashtags, got %v", flat["hashtags"])
	}
}

func TestEmptyHashtagsRoundTrip(t *testing.T) {
	meta := map[string]any{
		"caption":  "no tags here",
		"hashtags": []string{},
	}
	flat := Flatten(meta)
	if flat["hashtags"] != "" {
		t.Fatalf("expected empty string, got %v", flat["hashtags"])
	}
	got := Unflatten(flat)
	tags, ok := got["hashtags"].([]string)
	if !ok {
		t.Fatalf("expected []string, got %T", got["hashtags"])
	}
	if len(tags) != 0 {
		t.Fatalf("empty hashtags became %v, want empty list", tags)
	}
}

func TestUnknownNonScalarFallsBackToJSON(t *testing.T) {
	meta := map[string]any{
		"extras": map[string]any{"a": "b"},
	}
	flat := Flatten(meta)
	if flat["extras"] != `{"a":"b"}` {
		t.Fatalf("expected JSON fallback, got %v", flat["extras"])
	}
	// JSON-fallback fields pass through unchanged on the way back.
	got := Unflatten(flat)
	if got["extras"] != `{"a":"b"}` {
		t.Fatalf("expected string pass-through, got %v", got["extras"])
	}
}

func TestScalarPassThrough(t *testing.T) {
	meta := map[string]any{"caption": "plain", "followers": 42}
	got := Unflatten(Flatten(meta))
	if !reflect.DeepEqual(got, meta) {
		t.Fatalf("scalars changed: %#v", got)
	}
}
