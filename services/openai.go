package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/armanmujtaba/Trivanza/models"
)

// DefaultOpenAIModel is used when no model is configured
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
type OpenAIProvider struct {
	client *goopenai.Client
}

// NewOpenAIProvider creates a provider. An empty baseURL keeps the public
// OpenAI endpoint; a vLLM or other compatible server can be used instead.
func NewOpenAIProvider(apiKey, baseURL string, httpClient *http.Client) (*OpenAIProvider, error) {
	if apiKey == "" && baseURL == "" {
		return nil, errors.New("missing the OpenAI API key, set it in the OPENAI_API_KEY environment variable")
	}
	config := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}
	return &OpenAIProvider{client: goopenai.NewClientWithConfig(config)}, nil
}

// Name identifies the provider in logs
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Chat sends the transcript and returns the first choice
func (p *OpenAIProvider) Chat(ctx context.Context, turns []models.Turn, opts Options) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    string(t.Role),
			Content: t.Text,
		})
	}

	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &GatewayError{Kind: models.FailureInvalidResponse, Message: "no choices in completion response"}
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode >= 200 && reqErr.HTTPStatusCode < 300 {
			return &GatewayError{Kind: models.FailureInvalidResponse, Status: reqErr.HTTPStatusCode, Message: reqErr.Error()}
		}
		return statusError(reqErr.HTTPStatusCode, reqErr.Error())
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &GatewayError{Kind: models.FailureInvalidResponse, Message: err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("failed to send request: %w", err)
}
