// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/essay-engine/internal/request"
	"github.com/pdiddy/essay-engine/pkg/apperrors"
)

// geminiAPIURL is the Gemini API base. Package-level var for test substitution.
var geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiBackend calls the Gemini generateContent endpoint with the contract
// as the response schema.
type GeminiBackend struct {
	APIKey         string
	ModelName      string
	ThinkingBudget int
	// BaseURL overrides geminiAPIURL when set.
	BaseURL string
	Client  *http.Client
}

type geminiRequest struct {
	SystemInstruction *geminiContent        `json:"systemInstruction,omitempty"`
	Contents          []geminiContent       `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	Thought    bool              `json:"thought,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string                `json:"responseMimeType"`
	ResponseSchema   map[string]any        `json:"responseSchema"`
	ThinkingConfig   *geminiThinkingConfig `json:"thinkingConfig,omitempty"`
}

type geminiThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Name implements Backend.
func (g *GeminiBackend) Name() string { return "gemini" }

// Model implements Backend.
func (g *GeminiBackend) Model() string { return g.ModelName }

// Generate implements Backend.
func (g *GeminiBackend) Generate(ctx context.Context, req *request.Request) (Reply, error) {
	body := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: req.Instruction}}},
		Contents:          []geminiContent{{Role: "user", Parts: geminiParts(req.Parts)}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   req.Contract.OpenAPISchema(),
		},
	}
	if g.ThinkingBudget > 0 {
		body.GenerationConfig.ThinkingConfig = &geminiThinkingConfig{ThinkingBudget: g.ThinkingBudget}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return Reply{}, fmt.Errorf("marshaling request: %w", err)
	}

	base := geminiAPIURL
	if g.BaseURL != "" {
		base = g.BaseURL
	}
	endpoint := strings.TrimRight(base, "/") + "/models/" + url.PathEscape(g.ModelName) + ":generateContent"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return Reply{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Reply{}, fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, string(msg))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return Reply{}, apperrors.Wrap(err, apperrors.KindServiceUnavailable, "decoding Gemini response")
	}

	if len(gResp.Candidates) == 0 {
		if gResp.PromptFeedback != nil && gResp.PromptFeedback.BlockReason != "" {
			return Reply{}, apperrors.Newf(apperrors.KindEmptyResponse, "Gemini blocked the prompt: %s", gResp.PromptFeedback.BlockReason)
		}
		return Reply{}, nil
	}

	var text strings.Builder
	for _, p := range gResp.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		text.WriteString(p.Text)
	}
	return Reply{Text: text.String()}, nil
}

func geminiParts(parts []request.Part) []geminiPart {
	out := make([]geminiPart, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case request.BinaryPart:
			out = append(out, geminiPart{InlineData: &geminiInlineData{MIMEType: p.MIMEType, Data: p.Base64()}})
		case request.TextPart:
			out = append(out, geminiPart{Text: p.Text})
		}
	}
	return out
}
