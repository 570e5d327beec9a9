package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"

// geminiLadder is the per-attempt model escalation order.
var geminiLadder = []string{
	"gemini-2.5-flash-lite",
	"gemini-2.5-flash",
	"gemini-2.5-pro",
}

const (
	geminiAttempts   = 3
	geminiLastResort = "gemini-2.5-flash"
)

// GeminiClient implements Client against the Gemini generateContent API with
// a rotating key pool. Each Generate call takes the next key (atomic counter
// mod pool size), walks the model ladder with a pause between model failures,
// retries the whole ladder with exponential backoff, and finally makes one
// last try on the next key. Safe for concurrent use.
type GeminiClient struct {
	keys    []string
	baseURL string
	client  *http.Client
	log     *slog.Logger

	counter atomic.Uint64
	sleep   func(time.Duration)
}

// GeminiOption customizes a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithGeminiBaseURL overrides the API endpoint. Used in tests.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(c *GeminiClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithGeminiSleep overrides the backoff sleep function. Used in tests.
func WithGeminiSleep(sleep func(time.Duration)) GeminiOption {
	return func(c *GeminiClient) { c.sleep = sleep }
}

// NewGeminiClient creates a client over the given key pool. An empty pool is
// allowed; the client reports unavailable.
func NewGeminiClient(keys []string, log *slog.Logger, opts ...GeminiOption) *GeminiClient {
	c := &GeminiClient{
		keys:    keys,
		baseURL: geminiDefaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log,
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available returns true when at least one key is configured.
func (c *GeminiClient) Available() bool { return len(c.keys) > 0 }

// Generate walks the key pool and model ladder until a completion succeeds.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if len(c.keys) == 0 {
		return "", fmt.Errorf("gemini: no API keys configured")
	}

	idx := int((c.counter.Add(1) - 1) % uint64(len(c.keys)))
	key := c.keys[idx]

	var lastErr error
	for attempt := 0; attempt < geminiAttempts; attempt++ {
		for i, model := range geminiLadder {
			out, err := c.call(ctx, key, model, prompt)
			if err == nil {
				return out, nil
			}
			lastErr = err
			c.log.Debug("gemini model failed", "model", model, "attempt", attempt, "error", err)
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if i < len(geminiLadder)-1 {
				c.sleep(time.Second)
			}
		}
		if attempt < geminiAttempts-1 {
			c.sleep(backoff(attempt))
		}
	}

	// One last try on the next key before giving up.
	nextKey := c.keys[(idx+1)%len(c.keys)]
	out, err := c.call(ctx, nextKey, geminiLastResort, prompt)
	if err == nil {
		return out, nil
	}
	c.log.Warn("gemini exhausted", "attempts", geminiAttempts, "error", err)
	return "", fmt.Errorf("gemini: all models failed: %w", lastErr)
}

// backoff returns the wait before retrying the ladder: exponential with base
// one second, clamped to [4s, 10s].
func backoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d < 4*time.Second {
		d = 4 * time.Second
	}
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	return d
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// maxTokensFor sizes the output budget per model generation.
func maxTokensFor(model string) int {
	if strings.Contains(model, "2.5") {
		return 350
	}
	return 200
}

func (c *GeminiClient) call(ctx context.Context, key, model, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.3,
			TopP:            0.95,
			MaxOutputTokens: maxTokensFor(model),
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", key)

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

	var genResp geminiResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("parsing API response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("API error: %s", genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in API response")
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
