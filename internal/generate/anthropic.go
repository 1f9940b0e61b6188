// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/essay-engine/internal/request"
	"github.com/pdiddy/essay-engine/pkg/apperrors"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// AnthropicBackend calls the Claude Messages API. The contract is sent as the
// input schema of a single tool the model is forced to call, so the reply
// arrives as a decoded JSON value.
type AnthropicBackend struct {
	APIKey    string
	ModelName string
	MaxTokens int
	Client    *http.Client
}

type claudeRequest struct {
	Model      string           `json:"model"`
	MaxTokens  int              `json:"max_tokens"`
	System     string           `json:"system,omitempty"`
	Messages   []claudeMessage  `json:"messages"`
	Tools      []claudeTool     `json:"tools"`
	ToolChoice claudeToolChoice `json:"tool_choice"`
}

type claudeMessage struct {
	Role    string               `json:"role"`
	Content []claudeContentBlock `json:"content"`
}

type claudeContentBlock struct {
	Type   string        `json:"type"`
	Text   string        `json:"text,omitempty"`
	Source *claudeSource `json:"source,omitempty"`
}

type claudeSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type claudeToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type claudeResponse struct {
	Content []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text"`
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Name implements Backend.
func (c *AnthropicBackend) Name() string { return "anthropic" }

// Model implements Backend.
func (c *AnthropicBackend) Model() string { return c.ModelName }

// Generate implements Backend.
func (c *AnthropicBackend) Generate(ctx context.Context, req *request.Request) (Reply, error) {
	content, err := claudeBlocks(req.Parts)
	if err != nil {
		return Reply{}, err
	}

	tool := req.Contract.QualifiedName()
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	reqBody := claudeRequest{
		Model:      c.ModelName,
		MaxTokens:  maxTokens,
		System:     req.Instruction,
		Messages:   []claudeMessage{{Role: "user", Content: content}},
		Tools:      []claudeTool{{Name: tool, Description: req.Contract.Description, InputSchema: req.Contract.JSONSchema()}},
		ToolChoice: claudeToolChoice{Type: "tool", Name: tool},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Reply{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return Reply{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Reply{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(msg))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return Reply{}, apperrors.Wrap(err, apperrors.KindServiceUnavailable, "decoding Claude response")
	}

	var text strings.Builder
	for _, block := range cResp.Content {
		switch block.Type {
		case "tool_use":
			if block.Name == tool && len(block.Input) > 0 {
				return Reply{Structured: block.Input}, nil
			}
		case "text":
			text.WriteString(block.Text)
		}
	}
	return Reply{Text: text.String()}, nil
}

func claudeBlocks(parts []request.Part) ([]claudeContentBlock, error) {
	out := make([]claudeContentBlock, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case request.BinaryPart:
			blockType := "document"
			switch {
			case p.MIMEType == "application/pdf":
			case strings.HasPrefix(p.MIMEType, "image/"):
				blockType = "image"
			default:
				return nil, apperrors.Newf(apperrors.KindInvalidRequest, "Claude cannot read %s attachments", p.MIMEType)
			}
			out = append(out, claudeContentBlock{
				Type:   blockType,
				Source: &claudeSource{Type: "base64", MediaType: p.MIMEType, Data: p.Base64()},
			})
		case request.TextPart:
			out = append(out, claudeContentBlock{Type: "text", Text: p.Text})
		}
	}
	return out, nil
}
