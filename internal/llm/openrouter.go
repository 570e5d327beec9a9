package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openRouterDefaultBaseURL = "https://openrouter.ai/api"
	openRouterDefaultModel   = "openrouter/auto"
)

// OpenRouterClient implements Client against an OpenAI-compatible chat
// completions endpoint. It serves as the fallback generator when the Gemini
// pool is exhausted.
type OpenRouterClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// OpenRouterOption customizes an OpenRouterClient.
type OpenRouterOption func(*OpenRouterClient)

// WithOpenRouterBaseURL overrides the API endpoint. Used in tests.
func WithOpenRouterBaseURL(url string) OpenRouterOption {
	return func(c *OpenRouterClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithOpenRouterModel overrides the default model.
func WithOpenRouterModel(model string) OpenRouterOption {
	return func(c *OpenRouterClient) { c.model = model }
}

// NewOpenRouterClient creates a fallback client. An empty key is allowed;
// the client reports unavailable.
func NewOpenRouterClient(apiKey string, opts ...OpenRouterOption) *OpenRouterClient {
	c := &OpenRouterClient{
		apiKey:  apiKey,
		model:   openRouterDefaultModel,
		baseURL: openRouterDefaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available returns true if the API key is present.
func (c *OpenRouterClient) Available() bool { return c.apiKey != "" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends the prompt as a single user message.
func (c *OpenRouterClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openrouter: no API key configured")
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
		TopP:        0.95,
		MaxTokens:   350,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parsing API response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in API response")
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
