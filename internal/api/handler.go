// Package api exposes the coaching agent over HTTP: blocking and
// streaming chat, mode listing, account stats, canned analyses, data
// reload and the voice impact summary.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"creatorcoach/internal/agent"
	"creatorcoach/internal/pipeline"
	"creatorcoach/internal/source"
	"creatorcoach/internal/voice"
	"creatorcoach/pkg/logging"
)

// Handler serves the agent endpoints. The mutex serializes reload
// (write) against the chat and retrieval paths (read), so a reindex
// never races an in-flight query.
type Handler struct {
	Dispatcher *agent.Dispatcher
	Pipeline   *pipeline.Pipeline
	Voice      *voice.Agent // nil when TTS is not configured
	Logger     logging.Logger

	PostsPath   string
	ProfilePath string

	// DefaultTemperature and DefaultMaxTokens fill requests that leave
	// the sampling knobs unset. Unset fields fall back to 0.5 and 1000.
	DefaultTemperature float64
	DefaultMaxTokens   int

	mu sync.RWMutex
}

func (h *Handler) defaults() (float64, int) {
	temperature := h.DefaultTemperature
	if temperature == 0 {
		temperature = 0.5
	}
	maxTokens := h.DefaultMaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}
	return temperature, maxTokens
}

// RegisterRoutes mounts the API under /api.
func RegisterRoutes(router *gin.Engine, h *Handler) {
	group := router.Group("/api")
	group.POST("/chat", h.HandleChat)
	group.POST("/chat/stream", h.HandleChatStream)
	group.GET("/modes", h.HandleModes)
	group.GET("/stats", h.HandleStats)
	group.GET("/top-posts", h.HandleTopPosts)
	group.POST("/recommendations/:focus", h.HandleRecommendations)
	group.POST("/reload", h.HandleReload)
	group.POST("/voice-summary", h.HandleVoiceSummary)
}

// ChatRequest is the body for /api/chat and /api/chat/stream.
// Temperature is a pointer so an explicit 0.0 survives defaulting.
type ChatRequest struct {
	Question    string   `json:"question"`
	Mode        string   `json:"mode,omitempty"`
	NPosts      int      `json:"n_posts,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
}

// ChatResponse is the blocking chat result.
type ChatResponse struct {
	Response           string `json:"response"`
	Mode               string `json:"mode"`
	ModeDescription    string `json:"mode_description"`
	Question           string `json:"question"`
	RelevantPostsCount int    `json:"relevant_posts_count"`
}

// ModeInfo describes one advisory mode.
type ModeInfo struct {
	Mode        string `json:"mode"`
	Description string `json:"description"`
}

// StatsResponse is the account statistics payload.
type StatsResponse struct {
	Username          string  `json:"username"`
	Followers         int     `json:"followers"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
	Niche             string  `json:"niche"`
	TotalPostsIndexed int     `json:"total_posts_indexed"`
}

// ReloadRequest is the body for /api/reload.
type ReloadRequest struct {
	Force bool `json:"force,omitempty"`
}

// VoiceSummaryRequest is the body for /api/voice-summary.
type VoiceSummaryRequest struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	WithAudio   bool     `json:"with_audio,omitempty"`
}

func (r *ChatRequest) validate(defaultTemperature float64, defaultMaxTokens int) (agent.Options, error) {
	r.Question = strings.TrimSpace(r.Question)
	if r.Question == "" {
		return agent.Options{}, errors.New("question is required")
	}
	if r.NPosts == 0 {
		r.NPosts = 3
	}
	if r.NPosts < 1 || r.NPosts > 10 {
		return agent.Options{}, errors.New("n_posts must be between 1 and 10")
	}
	temperature := defaultTemperature
	if r.Temperature != nil {
		temperature = *r.Temperature
	}
	if temperature < 0 || temperature > 1 {
		return agent.Options{}, errors.New("temperature must be between 0.0 and 1.0")
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = defaultMaxTokens
	}
	if r.MaxTokens < 100 || r.MaxTokens > 4000 {
		return agent.Options{}, errors.New("max_tokens must be between 100 and 4000")
	}
	return agent.Options{
		Mode:        agent.Resolve(r.Mode),
		K:           r.NPosts,
		Temperature: temperature,
		MaxTokens:   r.MaxTokens,
	}, nil
}

// HandleChat answers a question in one blocking response.
func (h *Handler) HandleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	opts, err := req.validate(h.defaults())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.RLock()
	result, err := h.Dispatcher.Generate(c.Request.Context(), req.Question, opts)
	h.mu.RUnlock()
	if err != nil {
		h.Logger.WithError(err).Error("Chat generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate response"})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Response:           result.Answer,
		Mode:               string(result.Mode),
		ModeDescription:    result.ModeDescription,
		Question:           result.Question,
		RelevantPostsCount: len(result.Posts),
	})
}

// HandleChatStream answers a question as an SSE token stream. Metadata
// is sent after the last token, then a done event and the [DONE]
// sentinel.
func (h *Handler) HandleChatStream(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	opts, err := req.validate(h.defaults())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	result, err := h.Dispatcher.GenerateStream(c.Request.Context(), req.Question, opts)
	if err != nil {
		h.Logger.WithError(err).Error("Chat stream setup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate response"})
		return
	}
	defer result.Stream.Close()

	streamer, err := newSSEStreamer(c.Writer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unavailable"})
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for {
		chunk, err := result.Stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.Logger.WithError(err).Warn("Chat stream interrupted")
			_ = streamer.SendError(err)
			_ = streamer.SendDone()
			return
		}
		if err := streamer.SendToken(chunk.Content); err != nil {
			return
		}
	}

	if err := streamer.SendMeta(sseMeta{
		Type:               "meta",
		Mode:               string(result.Mode),
		ModeDescription:    result.ModeDescription,
		RelevantPostsCount: len(result.Posts),
	}); err != nil {
		h.Logger.WithError(err).Warn("Failed to send stream metadata")
	}
	_ = streamer.SendDone()
}

// HandleModes lists the advisory modes.
func (h *Handler) HandleModes(c *gin.Context) {
	modes := make([]ModeInfo, 0, len(agent.Modes()))
	for _, mode := range agent.Modes() {
		modes = append(modes, ModeInfo{Mode: string(mode), Description: mode.Description()})
	}
	c.JSON(http.StatusOK, modes)
}

// HandleStats reports the loaded profile and index size.
func (h *Handler) HandleStats(c *gin.Context) {
	h.mu.RLock()
	stats, err := h.Pipeline.Stats(c.Request.Context())
	h.mu.RUnlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read stats"})
		return
	}

	resp := StatsResponse{Username: "N/A", Niche: "N/A", TotalPostsIndexed: stats.TotalPosts}
	if stats.Profile != nil {
		resp.Username = stats.Profile.Username
		resp.Followers = stats.Profile.Followers
		resp.AvgEngagementRate = stats.Profile.AvgEngagementRate
		resp.Niche = stats.Profile.Niche
	}
	c.JSON(http.StatusOK, resp)
}

// HandleTopPosts runs a canned top-performers analysis over the n best
// retrieval hits.
func (h *Handler) HandleTopPosts(c *gin.Context) {
	n := 3
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be an integer"})
			return
		}
		n = parsed
	}
	if n < 1 || n > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be between 1 and 10"})
		return
	}

	question := fmt.Sprintf("What are my %d best performing posts and why?", n)
	temperature, maxTokens := h.defaults()
	h.mu.RLock()
	result, err := h.Dispatcher.Generate(c.Request.Context(), question, agent.Options{
		Mode:        agent.ModeContentAnalyst,
		K:           n,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	h.mu.RUnlock()
	if err != nil {
		h.Logger.WithError(err).Error("Top-posts analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis":       result.Answer,
		"posts_analyzed": len(result.Posts),
	})
}

var recommendationQuestions = map[string]string{
	"general":    "What are your main recommendations to improve my Instagram?",
	"content":    "How can I optimize my content?",
	"growth":     "Which strategies would accelerate my growth?",
	"engagement": "How do I increase my engagement rate?",
}

// HandleRecommendations answers a canned question for a whitelisted
// focus area in strategy mode.
func (h *Handler) HandleRecommendations(c *gin.Context) {
	focus := c.Param("focus")
	question, ok := recommendationQuestions[focus]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid focus, must be one of: general, content, growth, engagement"})
		return
	}

	temperature, maxTokens := h.defaults()
	h.mu.RLock()
	result, err := h.Dispatcher.Generate(c.Request.Context(), question, agent.Options{
		Mode:        agent.ModeStrategy,
		K:           3,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	h.mu.RUnlock()
	if err != nil {
		h.Logger.WithError(err).Error("Recommendations generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate recommendations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"focus":          focus,
		"recommendation": result.Answer,
		"mode":           string(result.Mode),
	})
}

// HandleReload re-reads the source files and reindexes. It takes the
// write lock, so in-flight chats finish first and new ones wait.
func (h *Handler) HandleReload(c *gin.Context) {
	var req ReloadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
			return
		}
	}

	posts, err := source.LoadPosts(h.PostsPath)
	if err != nil {
		h.Logger.WithError(err).Error("Reload failed to read posts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	profile, err := source.LoadProfile(h.ProfilePath)
	if err != nil {
		h.Logger.WithError(err).Error("Reload failed to read profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	err = h.Pipeline.LoadData(c.Request.Context(), posts, profile, req.Force)
	var total int
	if err == nil {
		total, err = h.Pipeline.Count(c.Request.Context())
	}
	h.mu.Unlock()
	if err != nil {
		h.Logger.WithError(err).Error("Reload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"forced":      req.Force,
		"total_posts": total,
	})
}

// HandleVoiceSummary generates the latest-post impact narration, with
// the MP3 artifact unless with_audio is false. A synthesis failure
// still returns the text, with audio_error set.
func (h *Handler) HandleVoiceSummary(c *gin.Context) {
	if h.Voice == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "voice summaries are not configured"})
		return
	}

	req := VoiceSummaryRequest{WithAudio: true}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
			return
		}
	}
	temperature := 0.7
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if temperature < 0 || temperature > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "temperature must be between 0.0 and 1.0"})
		return
	}
	if req.MaxTokens != 0 && (req.MaxTokens < 100 || req.MaxTokens > 4000) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_tokens must be between 100 and 4000"})
		return
	}

	h.mu.RLock()
	var (
		summary voice.Summary
		err     error
	)
	if req.WithAudio {
		summary, err = h.Voice.GenerateWithAudio(c.Request.Context(), temperature, req.MaxTokens)
	} else {
		summary, err = h.Voice.GenerateSummary(c.Request.Context(), temperature, req.MaxTokens)
	}
	h.mu.RUnlock()
	if err != nil {
		if errors.Is(err, pipeline.ErrNoRecords) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no posts indexed yet"})
			return
		}
		h.Logger.WithError(err).Error("Voice summary failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate voice summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
