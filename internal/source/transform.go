package source

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"creatorcoach/internal/record"
)

// APIPost is a media object from the Instagram Graph API.
type APIPost struct {
	ID            string      `json:"id"`
	Caption       string      `json:"caption"`
	MediaType     string      `json:"media_type"`
	Timestamp     string      `json:"timestamp"`
	LikeCount     int         `json:"like_count"`
	CommentsCount int         `json:"comments_count"`
	MediaURL      string      `json:"media_url"`
	Permalink     string      `json:"permalink"`
	Insights      APIInsights `json:"insights"`
}

// APIInsights is the nested insights envelope on a media object.
type APIInsights struct {
	Data []APIInsight `json:"data"`
}

// APIInsight is one named insight metric.
type APIInsight struct {
	Name   string `json:"name"`
	Values []struct {
		Value int `json:"value"`
	} `json:"values"`
}

var mediaTypeMap = map[string]string{
	"IMAGE":          record.MediaPhoto,
	"VIDEO":          record.MediaReel,
	"CAROUSEL_ALBUM": record.MediaCarousel,
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// Transformer converts Graph API posts into content records. The
// follower count, when known, is the engagement-rate denominator;
// otherwise the rate falls back to reach and the record's rate basis
// says so.
type Transformer struct {
	followers int
}

func NewTransformer(followers int) *Transformer {
	return &Transformer{followers: followers}
}

// TransformPost converts one API post. index numbers the generated id
// used when the API post has none.
func (t *Transformer) TransformPost(post APIPost, index int) record.ContentRecord {
	insights := make(map[string]int, len(post.Insights.Data))
	for _, insight := range post.Insights.Data {
		if len(insight.Values) > 0 {
			insights[insight.Name] = insight.Values[0].Value
		}
	}

	likes := post.LikeCount
	comments := post.CommentsCount
	reach := insights["reach"]
	impressions := insights["impressions"]
	saves := insights["saved"]

	// The Graph API does not expose shares on media objects.
	total, ok := insights["engagement"]
	if !ok {
		total = likes + comments
	}

	var rate float64
	basis := record.RateBasisReach
	switch {
	case t.followers > 0:
		rate = round2(float64(likes+comments) / float64(t.followers) * 100)
		basis = record.RateBasisFollowers
	case reach > 0:
		rate = round2(float64(total) / float64(reach) * 100)
	}

	id := post.ID
	if id == "" {
		id = fmt.Sprintf("post_%03d", index)
	}
	timestamp := post.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	mediaURL := post.MediaURL
	if mediaURL == "" {
		mediaURL = post.Permalink
	}
	mediaType, ok := mediaTypeMap[post.MediaType]
	if !ok {
		mediaType = record.MediaPhoto
	}

	return record.ContentRecord{
		ID:        id,
		Caption:   post.Caption,
		MediaType: mediaType,
		Timestamp: timestamp,
		Metrics: record.Metrics{
			Likes:             likes,
			Comments:          comments,
			Shares:            0,
			Saves:             saves,
			Reach:             reach,
			Impressions:       impressions,
			EngagementRate:    rate,
			TotalInteractions: total,
		},
		Hashtags:  ExtractHashtags(post.Caption),
		MediaURL:  mediaURL,
		RateBasis: basis,
	}
}

// TransformPosts converts a batch, numbering generated ids from 1.
func (t *Transformer) TransformPosts(posts []APIPost) []record.ContentRecord {
	records := make([]record.ContentRecord, 0, len(posts))
	for i, post := range posts {
		records = append(records, t.TransformPost(post, i+1))
	}
	return records
}

// ExtractHashtags pulls #tags out of a caption, in order of
// appearance, without the leading #.
func ExtractHashtags(caption string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(caption, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
