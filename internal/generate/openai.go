// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/pdiddy/essay-engine/internal/request"
)

// OpenAIBackend calls the Chat Completions API with a strict JSON schema
// response format.
type OpenAIBackend struct {
	ModelName string
	MaxTokens int
	Opts      []option.RequestOption
}

// NewOpenAIBackend builds an OpenAIBackend. SDK retries are disabled.
func NewOpenAIBackend(apiKey, model, baseURL string, maxTokens int, client *http.Client) *OpenAIBackend {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if client != nil {
		opts = append(opts, option.WithHTTPClient(client))
	}
	return &OpenAIBackend{ModelName: model, MaxTokens: maxTokens, Opts: opts}
}

// Name implements Backend.
func (o *OpenAIBackend) Name() string { return "openai" }

// Model implements Backend.
func (o *OpenAIBackend) Model() string { return o.ModelName }

// Generate implements Backend.
func (o *OpenAIBackend) Generate(ctx context.Context, req *request.Request) (Reply, error) {
	client := openai.NewClient(o.Opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.ModelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Instruction),
			openai.UserMessage(openAIParts(req.Parts)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.Contract.QualifiedName(),
					Description: openai.String(req.Contract.Description),
					Schema:      req.Contract.JSONSchema(),
					Strict:      openai.Bool(true),
				},
			},
		},
	}
	if o.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Reply{}, fmt.Errorf("calling OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, nil
	}
	return Reply{Text: resp.Choices[0].Message.Content}, nil
}

func openAIParts(parts []request.Part) []openai.ChatCompletionContentPartUnionParam {
	out := make([]openai.ChatCompletionContentPartUnionParam, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case request.BinaryPart:
			out = append(out, openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
				FileData: openai.String(p.DataURL()),
				Filename: openai.String(fileName(p)),
			}))
		case request.TextPart:
			out = append(out, openai.TextContentPart(p.Text))
		}
	}
	return out
}

func fileName(p request.BinaryPart) string {
	if p.Name != "" {
		return p.Name
	}
	return "attachment.pdf"
}
