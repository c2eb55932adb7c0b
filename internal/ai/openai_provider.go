package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// completion is one chat round: an optional system message, a user message
// and, when Schema is set, a structured-output constraint.
type completion struct {
	Model      string
	System     string
	User       string
	SchemaName string
	Schema     json.RawMessage
}

// OpenAIProvider talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAIProvider struct {
	client *openai.Client
	apiKey string
}

// NewOpenAIProvider creates a provider. An empty baseURL keeps the library
// default; a nil httpClient keeps the library's client.
func NewOpenAIProvider(baseURL, apiKey string, httpClient *http.Client) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
	}
}

// Complete runs c and returns the first choice's text.
func (p *OpenAIProvider) Complete(ctx context.Context, c completion) (string, error) {
	var msgs []openai.ChatCompletionMessage
	if c.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: c.User})

	req := openai.ChatCompletionRequest{
		Model:    c.Model,
		Messages: msgs,
	}
	if c.Schema != nil {
		req.Temperature = 0
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   c.SchemaName,
				Schema: c.Schema,
				Strict: true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// parseAPIError pulls the status and message out of the library's error types.
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("llm returned HTTP %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("llm returned HTTP %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), err)
	}

	return fmt.Errorf("llm request: %w", err)
}
