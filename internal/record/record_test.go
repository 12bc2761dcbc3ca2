package record

import (
	"reflect"
	"testing"
)

func sampleRecord() ContentRecord {
	return ContentRecord{
		ID:        "post_001",
		Caption:   "Morning routine that changed everything",
		MediaType: MediaReel,
		Timestamp: "2026-05-12T08:30:00Z",
		MediaURL:  "https://example.com/p/abc",
		RateBasis: RateBasisFollowers,
		Metrics: Metrics{
			Likes:             1520,
			Comments:          89,
			Shares:            42,
			Saves:             130,
			Reach:             25000,
			Impressions:       31000,
			EngagementRate:    7.1,
			TotalInteractions: 1781,
		},
		Hashtags: []string{"morning", "routine"},
	}
}

func TestMetadataRecordRoundTrip(t *testing.T) {
	rec := sampleRecord()
	got := FromMetadata(rec.ID, Unflatten(Flatten(rec.Metadata())))
	if !reflect.DeepEqual(got, rec) {
		t.Fatalf("record round trip mismatch:\n got  %+v\n want %+v", got, rec)
	}
}

func TestFromMetadataToleratesFloat64Numbers(t *testing.T) {
	// Values come back as float64 after a JSON storage round trip.
	meta := map[string]any{
		"caption": "c",
		"metrics": map[string]any{
			"likes":           float64(10),
			"engagement_rate": 2.5,
		},
		"hashtags": []any{"a", "b"},
	}
	rec := FromMetadata("id1", meta)
	if rec.Metrics.Likes != 10 {
		t.Fatalf("likes = %d, want 10", rec.Metrics.Likes)
	}
	if rec.Metrics.EngagementRate != 2.5 {
		t.Fatalf("engagement_rate = %v, want 2.5", rec.Metrics.EngagementRate)
	}
	if !reflect.DeepEqual(rec.Hashtags, []string{"a", "b"}) {
		t.Fatalf("hashtags = %v", rec.Hashtags)
	}
}

func TestValidate(t *testing.T) {
	rec := sampleRecord()
	if err := rec.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	bad := sampleRecord()
	bad.ID = ""
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for missing id")
	}

	bad = sampleRecord()
	bad.MediaType = "livestream"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown media type")
	}
}

func TestProfileValidate(t *testing.T) {
	p := CreatorProfile{Username: "coach", Followers: 10}
	if err := p.Validate(); err != nil {
		t.Fatalf("valid profile rejected: %v", err)
	}
	p.Followers = -1
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for negative followers")
	}
	p = CreatorProfile{}
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for missing username")
	}
}
