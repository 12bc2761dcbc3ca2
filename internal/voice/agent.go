// Package voice generates a spoken impact summary of the creator's
// latest post: impact metrics, a narration text from the language
// model, and an MP3 artifact via text-to-speech.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"creatorcoach/internal/agent"
	"creatorcoach/internal/pipeline"
	"creatorcoach/internal/prompt"
	"creatorcoach/internal/record"
	"creatorcoach/pkg/llm"
	"creatorcoach/pkg/logging"
)

// Synthesizer converts narration text to MP3 bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ImpactMetrics compares the latest post against the account averages
// computed over the other indexed posts.
type ImpactMetrics struct {
	Likes       int `json:"likes"`
	Comments    int `json:"comments"`
	Shares      int `json:"shares"`
	Saves       int `json:"saves"`
	Reach       int `json:"reach"`
	Impressions int `json:"impressions"`

	EngagementRate float64 `json:"engagement_rate"`
	AvgEngagement  float64 `json:"avg_engagement"`
	AvgLikes       float64 `json:"avg_likes"`
	AvgComments    float64 `json:"avg_comments"`
	AvgSaves       float64 `json:"avg_saves"`

	EngagementDiffPct   float64 `json:"engagement_diff_pct"`
	ViralityRatio       float64 `json:"virality_ratio"`
	ActiveEngagementPct float64 `json:"active_engagement_pct"`
}

// Summary is the full voice-impact result. AudioError carries a failed
// synthesis without discarding the already generated text.
type Summary struct {
	Text         string        `json:"text"`
	CleanText    string        `json:"clean_text"`
	PostID       string        `json:"post_id"`
	Metrics      ImpactMetrics `json:"metrics"`
	AudioPath    string        `json:"audio_path,omitempty"`
	AudioError   string        `json:"audio_error,omitempty"`
	Voice        string        `json:"voice,omitempty"`
	SpeakingRate float64       `json:"speaking_rate,omitempty"`
	Pitch        float64       `json:"pitch,omitempty"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

// Agent produces voice-impact summaries.
type Agent struct {
	pipe      *pipeline.Pipeline
	assembler *prompt.Assembler
	provider  llm.Provider
	synth     Synthesizer
	logger    logging.Logger

	outputDir    string
	voiceName    string
	speakingRate float64
	pitch        float64
}

// Config holds the voice agent settings.
type Config struct {
	OutputDir    string
	VoiceName    string
	SpeakingRate float64
	Pitch        float64
}

func NewAgent(pipe *pipeline.Pipeline, assembler *prompt.Assembler, provider llm.Provider, synth Synthesizer, cfg Config, logger logging.Logger) (*Agent, error) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output/voice_summaries"
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("voice: create output dir: %w", err)
	}
	if cfg.SpeakingRate == 0 {
		cfg.SpeakingRate = 1.0
	}
	return &Agent{
		pipe:         pipe,
		assembler:    assembler,
		provider:     provider,
		synth:        synth,
		logger:       logger,
		outputDir:    cfg.OutputDir,
		voiceName:    cfg.VoiceName,
		speakingRate: cfg.SpeakingRate,
		pitch:        cfg.Pitch,
	}, nil
}

// ComputeImpact derives impact metrics for latest against the rest of
// the corpus. Averages exclude the latest post itself; with a single
// post the averages equal its own values. Virality is reach over
// followers as a percentage, defined as 0 when followers is 0.
func ComputeImpact(latest record.ContentRecord, all []record.ContentRecord, profile *record.CreatorProfile) ImpactMetrics {
	m := latest.Metrics
	impact := ImpactMetrics{
		Likes:          m.Likes,
		Comments:       m.Comments,
		Shares:         m.Shares,
		Saves:          m.Saves,
		Reach:          m.Reach,
		Impressions:    m.Impressions,
		EngagementRate: m.EngagementRate,
		AvgEngagement:  m.EngagementRate,
		AvgLikes:       float64(m.Likes),
		AvgComments:    float64(m.Comments),
		AvgSaves:       float64(m.Saves),
	}

	var others []record.ContentRecord
	for _, rec := range all {
		if rec.ID != latest.ID {
			others = append(others, rec)
		}
	}
	if n := len(others); n > 0 {
		var engagement, likes, comments, saves float64
		for _, rec := range others {
			engagement += rec.Metrics.EngagementRate
			likes += float64(rec.Metrics.Likes)
			comments += float64(rec.Metrics.Comments)
			saves += float64(rec.Metrics.Saves)
		}
		impact.AvgEngagement = engagement / float64(n)
		impact.AvgLikes = likes / float64(n)
		impact.AvgComments = comments / float64(n)
		impact.AvgSaves = saves / float64(n)
	}

	if impact.AvgEngagement > 0 {
		impact.EngagementDiffPct = (impact.EngagementRate - impact.AvgEngagement) / impact.AvgEngagement * 100
	}

	followers := 0
	if profile != nil {
		followers = profile.Followers
	}
	if followers > 0 {
		impact.ViralityRatio = float64(m.Reach) / float64(followers) * 100
	}

	total := m.Likes + m.Comments + m.Shares + m.Saves
	if total > 0 {
		impact.ActiveEngagementPct = float64(m.Comments+m.Shares+m.Saves) / float64(total) * 100
	}
	return impact
}

// GenerateSummary produces the narration text and impact metrics for
// the latest post. Requires at least one indexed record; an empty
// index surfaces pipeline.ErrNoRecords.
func (a *Agent) GenerateSummary(ctx context.Context, temperature float64, maxTokens int) (Summary, error) {
	latest, err := a.pipe.LatestRecord(ctx)
	if err != nil {
		return Summary{}, err
	}
	all, err := a.pipe.AllRecords(ctx)
	if err != nil {
		return Summary{}, err
	}

	impact := ComputeImpact(latest, all, a.pipe.Profile())

	system, err := a.assembler.SystemPrompt(agent.ModeVoiceImpact.TemplateKey(), prompt.Context{
		Profile: a.pipe.Profile(),
		Metrics: impactContext(latest, impact),
	})
	if err != nil {
		return Summary{}, fmt.Errorf("voice: system prompt: %w", err)
	}

	if maxTokens <= 0 {
		maxTokens = 300
	}
	text, err := a.provider.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: buildUserPrompt(latest, impact)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("voice: narration: %w", err)
	}

	return Summary{
		Text:        text,
		CleanText:   CleanForSpeech(text),
		PostID:      latest.ID,
		Metrics:     impact,
		Voice:       a.voiceName,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// GenerateWithAudio produces the summary and synthesizes the MP3
// artifact. A synthesis failure is recorded on the summary instead of
// discarding the generated text.
func (a *Agent) GenerateWithAudio(ctx context.Context, temperature float64, maxTokens int) (Summary, error) {
	summary, err := a.GenerateSummary(ctx, temperature, maxTokens)
	if err != nil {
		return Summary{}, err
	}
	summary.SpeakingRate = a.speakingRate
	summary.Pitch = a.pitch

	audio, err := a.synth.Synthesize(ctx, summary.CleanText)
	if err != nil {
		a.logger.WithError(err).Warn("Voice synthesis failed, returning text-only summary")
		summary.AudioError = err.Error()
		return summary, nil
	}

	name := fmt.Sprintf("voice_summary_%s_%s",
		time.Now().UTC().Format("20060102_150405"), uuid.New().String()[:8])
	audioPath := filepath.Join(a.outputDir, name+".mp3")
	if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
		a.logger.WithError(err).Warn("Failed to write audio artifact")
		summary.AudioError = err.Error()
		return summary, nil
	}
	summary.AudioPath = audioPath

	metaPath := filepath.Join(a.outputDir, name+".json")
	meta, err := json.MarshalIndent(summary, "", "  ")
	if err == nil {
		if err := os.WriteFile(metaPath, meta, 0o644); err != nil {
			a.logger.WithError(err).Warn("Failed to write summary metadata")
		}
	}

	a.logger.WithFields(logging.Fields{
		"post_id": summary.PostID,
		"audio":   audioPath,
	}).Info("Generated voice impact summary")
	return summary, nil
}

func impactContext(latest record.ContentRecord, impact ImpactMetrics) []prompt.Metric {
	return []prompt.Metric{
		{Name: "Latest post", Value: fmt.Sprintf("%s (%s)", latest.Caption, latest.MediaType)},
		{Name: "Likes", Value: fmt.Sprintf("%d", impact.Likes)},
		{Name: "Comments", Value: fmt.Sprintf("%d", impact.Comments)},
		{Name: "Shares", Value: fmt.Sprintf("%d", impact.Shares)},
		{Name: "Saves", Value: fmt.Sprintf("%d", impact.Saves)},
		{Name: "Reach", Value: fmt.Sprintf("%d", impact.Reach)},
		{Name: "Engagement rate", Value: fmt.Sprintf("%.1f%%", impact.EngagementRate)},
		{Name: "Versus account average", Value: fmt.Sprintf("%+.1f%%", impact.EngagementDiffPct)},
		{Name: "Virality (reach/followers)", Value: fmt.Sprintf("%.1f%%", impact.ViralityRatio)},
		{Name: "Active engagement", Value: fmt.Sprintf("%.1f%%", impact.ActiveEngagementPct)},
	}
}

func buildUserPrompt(latest record.ContentRecord, impact ImpactMetrics) string {
	caption := latest.Caption
	if runes := []rune(caption); len(runes) > 200 {
		caption = string(runes[:200])
	}
	return fmt.Sprintf(`Write a short, punchy spoken summary (maximum 150 words) of this post's performance.

The post: %q

Focus on:
1. The key numbers (%d likes, %d comments, %d saves)
2. Performance versus the account average (%+.1f%%)
3. The main insight (why it worked or did not)
4. One concrete action for this week

Reminder: this will be read aloud, so use natural spoken language. Maximum 150 words.`,
		caption, impact.Likes, impact.Comments, impact.Saves, impact.EngagementDiffPct)
}
