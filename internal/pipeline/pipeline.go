// Package pipeline wires the embedder, vector store and metadata codec
// into the retrieval flow: load and index records once, then answer
// similarity queries with reconstructed records.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creatorcoach/internal/embed"
	"creatorcoach/internal/record"
	"creatorcoach/internal/vectorstore"
	"creatorcoach/pkg/logging"
)

// ErrNoRecords is returned by operations that structurally require at
// least one indexed record.
var ErrNoRecords = errors.New("pipeline: no records indexed")

// Retrieved is one retrieval hit with its reconstructed record.
type Retrieved struct {
	ID       string
	Distance float64
	Document string
	Record   record.ContentRecord
}

// Stats summarizes the pipeline's loaded state.
type Stats struct {
	Profile    *record.CreatorProfile `json:"profile,omitempty"`
	TotalPosts int                    `json:"total_posts"`
}

// Pipeline owns the retrieval side of the system. Not safe for
// concurrent mutation; callers serialize LoadData against Retrieve.
type Pipeline struct {
	store    *vectorstore.Store
	embedder *embed.Embedder
	logger   logging.Logger
	profile  *record.CreatorProfile
}

func New(store *vectorstore.Store, embedder *embed.Embedder, logger logging.Logger) *Pipeline {
	return &Pipeline{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Profile returns the loaded creator profile, or nil before LoadData.
func (p *Pipeline) Profile() *record.CreatorProfile {
	return p.profile
}

// Count returns the number of indexed records.
func (p *Pipeline) Count(ctx context.Context) (int, error) {
	return p.store.Count(ctx)
}

// LoadData installs the profile and indexes the records. If the store
// already holds records, indexing is skipped unless force is set;
// force resets the collection first.
func (p *Pipeline) LoadData(ctx context.Context, posts []record.ContentRecord, profile record.CreatorProfile, force bool) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("pipeline: load profile: %w", err)
	}
	p.profile = &profile
	p.logger.WithFields(logging.Fields{
		"username":  profile.Username,
		"followers": profile.Followers,
	}).Info("Loaded creator profile")

	count, err := p.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: count existing records: %w", err)
	}
	if count > 0 && !force {
		p.logger.WithField("count", count).Info("Vector store already populated, skipping index")
		return nil
	}
	if force && count > 0 {
		if err := p.store.Reset(ctx); err != nil {
			return fmt.Errorf("pipeline: reset for reload: %w", err)
		}
		p.logger.Info("Vector store reset for forced reload")
	}

	return p.IndexRecords(ctx, posts)
}

// IndexRecords embeds and upserts the records.
func (p *Pipeline) IndexRecords(ctx context.Context, posts []record.ContentRecord) error {
	if len(posts) == 0 {
		return errors.New("pipeline: no posts to index")
	}

	start := time.Now()
	texts := make([]string, 0, len(posts))
	for i := range posts {
		if err := posts[i].Validate(); err != nil {
			return fmt.Errorf("pipeline: index: %w", err)
		}
		texts = append(texts, embed.DocumentText(posts[i]))
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("pipeline: embed posts: %w", err)
	}

	entries := make([]vectorstore.Entry, 0, len(posts))
	for i := range posts {
		entries = append(entries, vectorstore.Entry{
			ID:       posts[i].ID,
			Vector:   vectors[i],
			Document: texts[i],
			Metadata: record.Flatten(posts[i].Metadata()),
		})
	}
	if err := p.store.Add(ctx, entries); err != nil {
		return fmt.Errorf("pipeline: index posts: %w", err)
	}

	indexedRecords.Set(float64(len(posts)))
	p.logger.WithFields(logging.Fields{
		"count":    len(posts),
		"duration": time.Since(start),
	}).Info("Indexed posts")
	return nil
}

// Retrieve embeds the question and returns up to k records in
// ascending distance order. Always a vector query; repeated questions
// are not cached.
func (p *Pipeline) Retrieve(ctx context.Context, question string, k int) ([]Retrieved, error) {
	start := time.Now()

	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		retrievalsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("pipeline: embed question: %w", err)
	}

	hits, err := p.store.Query(ctx, vector, k)
	if err != nil {
		retrievalsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("pipeline: query: %w", err)
	}

	results := make([]Retrieved, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Retrieved{
			ID:       hit.ID,
			Distance: hit.Distance,
			Document: hit.Document,
			Record:   record.FromMetadata(hit.ID, record.Unflatten(hit.Metadata)),
		})
	}

	retrievalsTotal.WithLabelValues("success").Inc()
	retrievalDuration.Observe(time.Since(start).Seconds())
	return results, nil
}

// LatestRecord returns the most recently posted record by timestamp.
func (p *Pipeline) LatestRecord(ctx context.Context) (record.ContentRecord, error) {
	all, err := p.store.GetAll(ctx)
	if err != nil {
		return record.ContentRecord{}, fmt.Errorf("pipeline: scan records: %w", err)
	}
	if len(all) == 0 {
		return record.ContentRecord{}, ErrNoRecords
	}

	var latest record.ContentRecord
	var latestTime time.Time
	for i, hit := range all {
		rec := record.FromMetadata(hit.ID, record.Unflatten(hit.Metadata))
		ts, err := time.Parse(time.RFC3339, rec.Timestamp)
		if err != nil {
			// Unparseable timestamps sort last.
			ts = time.Time{}
		}
		if i == 0 || ts.After(latestTime) {
			latest = rec
			latestTime = ts
		}
	}
	return latest, nil
}

// AllRecords returns every indexed record, reconstructed.
func (p *Pipeline) AllRecords(ctx context.Context) ([]record.ContentRecord, error) {
	all, err := p.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: scan records: %w", err)
	}
	records := make([]record.ContentRecord, 0, len(all))
	for _, hit := range all {
		records = append(records, record.FromMetadata(hit.ID, record.Unflatten(hit.Metadata)))
	}
	return records, nil
}

// Stats reports the loaded profile and index size.
func (p *Pipeline) Stats(ctx context.Context) (Stats, error) {
	count, err := p.store.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("pipeline: count: %w", err)
	}
	return Stats{Profile: p.profile, TotalPosts: count}, nil
}
