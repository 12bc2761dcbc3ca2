package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const validPosts = `{
	"posts": [
		{
			"id": "post_001",
			"caption": "Hello",
			"media_type": "photo",
			"timestamp": "2026-05-01T10:00:00Z",
			"metrics": {"likes": 10, "comments": 1, "engagement_rate": 1.1},
			"hashtags": ["hello"]
		}
	]
}`

func TestLoadPosts(t *testing.T) {
	path := writeFile(t, "posts.json", validPosts)
	posts, err := LoadPosts(path)
	if err != nil {
		t.Fatalf("LoadPosts: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "post_001" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
	if posts[0].Metrics.Likes != 10 {
		t.Fatalf("metrics not decoded: %+v", posts[0].Metrics)
	}
}

func TestLoadPostsRejectsInvalidRecord(t *testing.T) {
	path := writeFile(t, "posts.json", `{"posts": [{"id": "", "caption": "x"}]}`)
	if _, err := LoadPosts(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadPostsRejectsEmptyFile(t *testing.T) {
	path := writeFile(t, "posts.json", `{"posts": []}`)
	if _, err := LoadPosts(path); err == nil {
		t.Fatal("expected error for empty posts file")
	}
}

func TestLoadProfile(t *testing.T) {
	path := writeFile(t, "profile.json", `{
		"username": "fit_with_emma",
		"followers": 15000,
		"avg_engagement_rate": 4.5,
		"niche": "fitness",
		"posting_frequency": "3x per week"
	}`)
	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if profile.Username != "fit_with_emma" || profile.Followers != 15000 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestLoadProfileRejectsMissingUsername(t *testing.T) {
	path := writeFile(t, "profile.json", `{"followers": 10}`)
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadPostsMissingFile(t *testing.T) {
	if _, err := LoadPosts(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
