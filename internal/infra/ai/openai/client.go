package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/defect-vision/internal/domain/analysis"
	"github.com/bryanwahyu/defect-vision/internal/infra/ai/prompt"
)

const (
	maxTokens   = 2000
	temperature = 0.3
)

// Client is the multimodal provider adapter. One client serves every
// implemented slot; the model identifier is a per-call parameter.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient fails when no credential is configured; callers keep the process
// alive and surface a per-request initialization error instead.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, analysis.ErrMissingAPIKey
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &Client{api: openai.NewClient(apiKey), model: model}, nil
}

// Analyze sends the defect prompt plus the image attachment and normalizes
// the reply. The image reference passes through unchanged whether it is an
// https URL or a data:image base64 reference. Provider and transport failures
// come back as errors; the application layer converts them to error-tagged
// results.
func (c *Client) Analyze(ctx context.Context, model string, req analysis.Request) (analysis.ModelResult, error) {
	if model == "" {
		model = c.model
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt.Defect(req.Description),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: req.ImageURL,
						},
					},
				},
			},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return analysis.ModelResult{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return analysis.ModelResult{}, fmt.Errorf("empty completion response from %s", model)
	}

	return analysis.Normalize(resp.Choices[0].Message.Content), nil
}
