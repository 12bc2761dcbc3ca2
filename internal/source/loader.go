// Package source loads creator data from JSON files and transforms
// Instagram Graph API payloads into content records.
package source

import (
	"encoding/json"
	"fmt"
	"os"

	"creatorcoach/internal/record"
)

type postsFile struct {
	Posts []record.ContentRecord `json:"posts"`
}

// LoadPosts reads a posts JSON file ({"posts": [...]}) and validates
// every record. Missing required fields fail the load; there is no
// field-level repair.
func LoadPosts(path string) ([]record.ContentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read posts %s: %w", path, err)
	}

	var file postsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("source: parse posts %s: %w", path, err)
	}
	if len(file.Posts) == 0 {
		return nil, fmt.Errorf("source: %s contains no posts", path)
	}
	for i := range file.Posts {
		if err := file.Posts[i].Validate(); err != nil {
			return nil, fmt.Errorf("source: posts %s: %w", path, err)
		}
	}
	return file.Posts, nil
}

// LoadProfile reads and validates a creator profile JSON file.
func LoadProfile(path string) (record.CreatorProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return record.CreatorProfile{}, fmt.Errorf("source: read profile %s: %w", path, err)
	}

	var profile record.CreatorProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return record.CreatorProfile{}, fmt.Errorf("source: parse profile %s: %w", path, err)
	}
	if err := profile.Validate(); err != nil {
		return record.CreatorProfile{}, fmt.Errorf("source: profile %s: %w", path, err)
	}
	return profile, nil
}
