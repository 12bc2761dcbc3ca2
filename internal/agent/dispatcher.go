package agent

import (
	"context"
	"fmt"
	"time"

	"creatorcoach/internal/pipeline"
	"creatorcoach/internal/prompt"
	"creatorcoach/internal/record"
	"creatorcoach/pkg/llm"
	"creatorcoach/pkg/logging"
)

// Retriever is the slice of the pipeline the dispatcher needs.
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]pipeline.Retrieved, error)
	Profile() *record.CreatorProfile
}

// Options tunes a single generation call.
type Options struct {
	Mode        Mode
	K           int
	Temperature float64
	MaxTokens   int
}

// Result is a completed blocking generation.
type Result struct {
	Mode            Mode                 `json:"mode"`
	ModeDescription string               `json:"mode_description"`
	Answer          string               `json:"answer"`
	Posts           []pipeline.Retrieved `json:"posts"`
	Question        string               `json:"question"`
}

// StreamResult is a streaming generation: metadata resolved up front,
// tokens delivered through Stream. The stream is single-pass and
// forward-only; a second read requires a fresh generation call.
type StreamResult struct {
	Mode            Mode
	ModeDescription string
	Posts           []pipeline.Retrieved
	Question        string
	Stream          llm.Stream
}

// Dispatcher runs the retrieve, assemble, complete flow for one mode.
type Dispatcher struct {
	retriever Retriever
	assembler *prompt.Assembler
	provider  llm.Provider
	logger    logging.Logger
}

func NewDispatcher(retriever Retriever, assembler *prompt.Assembler, provider llm.Provider, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		retriever: retriever,
		assembler: assembler,
		provider:  provider,
		logger:    logger,
	}
}

// Generate answers the question in blocking mode.
func (d *Dispatcher) Generate(ctx context.Context, question string, opts Options) (Result, error) {
	start := time.Now()

	posts, req, err := d.prepare(ctx, question, opts)
	if err != nil {
		generationsTotal.WithLabelValues(string(opts.Mode), "error").Inc()
		return Result{}, err
	}

	answer, err := d.provider.Complete(ctx, req)
	if err != nil {
		generationsTotal.WithLabelValues(string(opts.Mode), "error").Inc()
		return Result{}, fmt.Errorf("agent: completion: %w", err)
	}

	generationsTotal.WithLabelValues(string(opts.Mode), "success").Inc()
	generationDuration.Observe(time.Since(start).Seconds())
	d.logger.WithFields(logging.Fields{
		"mode":     opts.Mode,
		"posts":    len(posts),
		"duration": time.Since(start),
	}).Info("Generated answer")

	return Result{
		Mode:            opts.Mode,
		ModeDescription: opts.Mode.Description(),
		Answer:          answer,
		Posts:           posts,
		Question:        question,
	}, nil
}

// GenerateStream answers the question with an incrementally delivered
// completion. It returns as soon as retrieval and prompt assembly are
// done; the caller consumes the stream at its own pace and must close
// it.
func (d *Dispatcher) GenerateStream(ctx context.Context, question string, opts Options) (StreamResult, error) {
	posts, req, err := d.prepare(ctx, question, opts)
	if err != nil {
		generationsTotal.WithLabelValues(string(opts.Mode), "error").Inc()
		return StreamResult{}, err
	}

	stream, err := d.provider.CompleteStream(ctx, req)
	if err != nil {
		generationsTotal.WithLabelValues(string(opts.Mode), "error").Inc()
		return StreamResult{}, fmt.Errorf("agent: completion: %w", err)
	}

	generationsTotal.WithLabelValues(string(opts.Mode), "success").Inc()
	return StreamResult{
		Mode:            opts.Mode,
		ModeDescription: opts.Mode.Description(),
		Posts:           posts,
		Question:        question,
		Stream:          stream,
	}, nil
}

func (d *Dispatcher) prepare(ctx context.Context, question string, opts Options) ([]pipeline.Retrieved, llm.Request, error) {
	k := opts.K
	if k < 1 {
		k = 3
	}

	posts, err := d.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return nil, llm.Request{}, fmt.Errorf("agent: retrieve: %w", err)
	}

	records := make([]record.ContentRecord, 0, len(posts))
	for _, p := range posts {
		records = append(records, p.Record)
	}

	system, err := d.assembler.SystemPrompt(opts.Mode.TemplateKey(), prompt.Context{
		Profile:  d.retriever.Profile(),
		Posts:    records,
		Question: question,
	})
	if err != nil {
		return nil, llm.Request{}, fmt.Errorf("agent: system prompt: %w", err)
	}
	user := d.assembler.UserPrompt(d.retriever.Profile(), question, records)

	return posts, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}, nil
}
