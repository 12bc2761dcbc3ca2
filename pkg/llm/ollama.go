package llm

import (
	"context"
	"strings"
)

type OllamaProvider struct {
	openai *OpenAIProvider
}

func NewOllamaProvider(cfg Config) *OllamaProvider {
	cfgCopy := cfg
	if strings.TrimSpace(cfgCopy.APIURL) == "" {
		cfgCopy.APIURL = "http://localhost:11434/v1"
	}
	return &OllamaProvider{
		openai: NewOpenAIProvider(cfgCopy),
	}
}

func (p *OllamaProvider) Complete(ctx context.Context, req Request) (string, error) {
	return p.openai.Complete(ctx, req)
}

func (p *OllamaProvider) CompleteStream(ctx context.Context, req Request) (Stream, error) {
	return p.openai.CompleteStream(ctx, req)
}
