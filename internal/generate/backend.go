// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/essay-engine/internal/request"
	"github.com/pdiddy/essay-engine/pkg/types"
)

// Backend sends one built request to a generation service. Implementations
// make a single call and never retry.
type Backend interface {
	Name() string
	Model() string
	Generate(ctx context.Context, req *request.Request) (Reply, error)
}

// Reply is the raw service output. Structured is set by services that
// return a decoded JSON value (tool input); Text is set by services that
// return JSON as text.
type Reply struct {
	Structured json.RawMessage
	Text       string
}

// empty reports whether the reply carries nothing to parse.
func (r Reply) empty() bool {
	return len(r.Structured) == 0 && strings.TrimSpace(r.Text) == ""
}

const (
	defaultGeminiModel    = "gemini-2.5-pro"
	defaultOpenAIModel    = "gpt-4o"
	defaultAnthropicModel = "claude-sonnet-4-5"
	defaultMaxTokens      = 16384
	defaultThinking       = 2048
)

// New builds the backend selected by cfg.Provider. apiKey is used when
// cfg.APIKey is empty.
func New(cfg types.AIConfig, apiKey string) (Backend, error) {
	if cfg.APIKey != "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key for provider %q", cfg.Provider)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	switch cfg.Provider {
	case types.ProviderGemini, "":
		model := cfg.Model
		if model == "" {
			model = defaultGeminiModel
		}
		thinking := cfg.ThinkingBudget
		if thinking == 0 {
			thinking = defaultThinking
		}
		return &GeminiBackend{APIKey: apiKey, ModelName: model, ThinkingBudget: thinking, BaseURL: cfg.BaseURL, Client: client}, nil
	case types.ProviderOpenAI:
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return NewOpenAIBackend(apiKey, model, cfg.BaseURL, maxTokens, client), nil
	case types.ProviderAnthropic:
		model := cfg.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		return &AnthropicBackend{APIKey: apiKey, ModelName: model, MaxTokens: maxTokens, Client: client}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want gemini, openai or anthropic)", cfg.Provider)
	}
}

// SecretName returns the .secrets file holding the provider's API key.
func SecretName(p types.AIProvider) string {
	if p == "" {
		p = types.ProviderGemini
	}
	return string(p) + "-api-key"
}
