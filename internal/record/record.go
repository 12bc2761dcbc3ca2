// Package record defines the content records and creator profile the
// pipeline retrieves and reasons over, plus the flat-metadata codec
// used by the vector index.
package record

import (
	"fmt"
	"strings"
)

// Media types for a content record.
const (
	MediaPhoto    = "photo"
	MediaReel     = "reel"
	MediaCarousel = "carousel"
)

// Engagement-rate denominators. Source data computes the rate against
// follower count when available and falls back to reach; the basis is
// recorded per record so downstream consumers never mix the two
// silently.
const (
	RateBasisFollowers = "followers"
	RateBasisReach     = "reach"
)

// Metrics holds the per-post engagement counters.
type Metrics struct {
	Likes             int     `json:"likes"`
	Comments          int     `json:"comments"`
	Shares            int     `json:"shares"`
	Saves             int     `json:"saves"`
	Reach             int     `json:"reach"`
	Impressions       int     `json:"impressions"`
	EngagementRate    float64 `json:"engagement_rate"`
	TotalInteractions int     `json:"total_interactions"`
}

// ContentRecord is a single annotated post. Immutable once indexed;
// reload means drop-and-reinsert.
type ContentRecord struct {
	ID        string   `json:"id"`
	Caption   string   `json:"caption"`
	MediaType string   `json:"media_type"`
	Timestamp string   `json:"timestamp"`
	Metrics   Metrics  `json:"metrics"`
	Hashtags  []string `json:"hashtags"`
	MediaURL  string   `json:"media_url"`
	RateBasis string   `json:"rate_basis"`
}

// CreatorProfile describes the account the records belong to. Loaded
// once per pipeline instance and held in memory; never indexed.
type CreatorProfile struct {
	Username          string  `json:"username"`
	Followers         int     `json:"followers"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
	Niche             string  `json:"niche"`
	PostingFrequency  string  `json:"posting_frequency"`
	Bio               string  `json:"bio"`
	AccountType       string  `json:"account_type"`
	JoinedDate        string  `json:"joined_date"`
}

// Validate checks the fields the pipeline structurally depends on.
func (r *ContentRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("record: id is required")
	}
	if strings.TrimSpace(r.Timestamp) == "" {
		return fmt.Errorf("record %s: timestamp is required", r.ID)
	}
	switch r.MediaType {
	case MediaPhoto, MediaReel, MediaCarousel:
	default:
		return fmt.Errorf("record %s: unknown media type %q", r.ID, r.MediaType)
	}
	return nil
}

// Validate checks the profile fields the prompt assembler depends on.
func (p *CreatorProfile) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return fmt.Errorf("profile: username is required")
	}
	if p.Followers < 0 {
		return fmt.Errorf("profile %s: followers must be non-negative", p.Username)
	}
	return nil
}

// Metadata returns the record's nested attribute shape, the input side
// of Flatten.
func (r *ContentRecord) Metadata() map[string]any {
	return map[string]any{
		"caption":    r.Caption,
		"media_type": r.MediaType,
		"timestamp":  r.Timestamp,
		"media_url":  r.MediaURL,
		"rate_basis": r.RateBasis,
		"metrics": map[string]any{
			"likes":              r.Metrics.Likes,
			"comments":           r.Metrics.Comments,
			"shares":             r.Metrics.Shares,
			"saves":              r.Metrics.Saves,
			"reach":              r.Metrics.Reach,
			"impressions":        r.Metrics.Impressions,
			"engagement_rate":    r.Metrics.EngagementRate,
			"total_interactions": r.Metrics.TotalInteractions,
		},
		"hashtags": append([]string(nil), r.Hashtags...),
	}
}

// FromMetadata rebuilds a ContentRecord from an unflattened metadata
// map. Numeric values may arrive as int, int64 or float64 depending on
// the storage round trip, so all three are accepted.
func FromMetadata(id string, meta map[string]any) ContentRecord {
	r := ContentRecord{
		ID:        id,
		Caption:   asString(meta["caption"]),
		MediaType: asString(meta["media_type"]),
		Timestamp: asString(meta["timestamp"]),
		MediaURL:  asString(meta["media_url"]),
		RateBasis: asString(meta["rate_basis"]),
	}
	if metrics, ok := meta["metrics"].(map[string]any); ok {
		r.Metrics = Metrics{
			Likes:             asInt(metrics["likes"]),
			Comments:          asInt(metrics["comments"]),
			Shares:            asInt(metrics["shares"]),
			Saves:             asInt(metrics["saves"]),
			Reach:             asInt(metrics["reach"]),
			Impressions:       asInt(metrics["impressions"]),
			EngagementRate:    asFloat(metrics["engagement_rate"]),
			TotalInteractions: asInt(metrics["total_interactions"]),
		}
	}
	switch tags := meta["hashtags"].(type) {
	case []string:
		r.Hashtags = tags
	case []any:
		for _, tag := range tags {
			r.Hashtags = append(r.Hashtags, asString(tag))
		}
	}
	return r
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
