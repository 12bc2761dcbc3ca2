package llm

import (
	"context"
	"strings"
)

// FeatherlessProvider uses the Featherless AI serverless inference API,
// which speaks the OpenAI chat completions protocol.
type FeatherlessProvider struct {
	openai *OpenAIProvider
}

func NewFeatherlessProvider(cfg Config) *FeatherlessProvider {
	cfgCopy := cfg
	if strings.TrimSpace(cfgCopy.APIURL) == "" {
		cfgCopy.APIURL = "https://api.featherless.ai/v1"
	}
	return &FeatherlessProvider{
		openai: NewOpenAIProvider(cfgCopy),
	}
}

func (p *FeatherlessProvider) Complete(ctx context.Context, req Request) (string, error) {
	return p.openai.Complete(ctx, req)
}

func (p *FeatherlessProvider) CompleteStream(ctx context.Context, req Request) (Stream, error) {
	return p.openai.CompleteStream(ctx, req)
}
