package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/armanmujtaba/Trivanza/models"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"

	// DefaultAnthropicModel is used when no model is configured
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
)

// AnthropicProvider handles communication with the Anthropic messages API
type AnthropicProvider struct {
	apiKey string
	url    string
	client *http.Client
}

// NewAnthropicProvider creates a provider. An empty url keeps the public
// endpoint.
func NewAnthropicProvider(apiKey, url string, client *http.Client) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, errors.New("missing the Anthropic API key, set it in the ANTHROPIC_API_KEY environment variable")
	}
	if url == "" {
		url = anthropicAPIURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &AnthropicProvider{apiKey: apiKey, url: url, client: client}, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Name identifies the provider in logs
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Chat sends the transcript. System turns go to the top-level system field;
// the messages list only carries user and assistant turns.
func (p *AnthropicProvider) Chat(ctx context.Context, turns []models.Turn, opts Options) (string, error) {
	reqBody := anthropicRequest{
		Model:       opts.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if reqBody.Model == "" {
		reqBody.Model = DefaultAnthropicModel
	}
	if reqBody.MaxTokens <= 0 {
		reqBody.MaxTokens = 4096
	}
	var system []string
	for _, t := range turns {
		if t.Role == models.RoleSystem {
			system = append(system, t.Text)
			continue
		}
		reqBody.Messages = append(reqBody.Messages, anthropicMessage{Role: string(t.Role), Content: t.Text})
	}
	reqBody.System = strings.Join(system, "\n\n")

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var anthropicResp anthropicResponse
	decodeErr := json.Unmarshal(body, &anthropicResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if decodeErr == nil && anthropicResp.Error != nil {
			msg = anthropicResp.Error.Message
		}
		return "", statusError(resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", &GatewayError{Kind: models.FailureInvalidResponse, Status: resp.StatusCode, Message: "failed to unmarshal response: " + decodeErr.Error()}
	}
	if anthropicResp.Error != nil {
		return "", &GatewayError{Kind: models.FailureInvalidResponse, Status: resp.StatusCode, Message: anthropicResp.Error.Message}
	}

	var parts []string
	for _, c := range anthropicResp.Content {
		if c.Type == "text" || c.Type == "" {
			parts = append(parts, c.Text)
		}
	}
	if len(parts) == 0 {
		return "", &GatewayError{Kind: models.FailureInvalidResponse, Status: resp.StatusCode, Message: "empty response from Anthropic"}
	}
	return strings.Join(parts, ""), nil
}
