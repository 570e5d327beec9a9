package simchat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elyxlabs/careloop/internal/models"
	"github.com/elyxlabs/careloop/internal/rag"
)

// HTTPClient answers questions through a running careloop API instead of an
// in-process service.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient targets the API at baseURL (e.g. http://localhost:8000).
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Ask posts to /ask and decodes the answer.
func (c *HTTPClient) Ask(ctx context.Context, question, explicitRole string, since time.Time) (*rag.Answer, error) {
	payload := map[string]string{"question": question}
	if explicitRole != "" {
		payload["role"] = explicitRole
	}
	if !since.IsZero() {
		payload["since"] = since.Format(models.DateLayout)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building ask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ask: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Detail string `json:"detail"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		if e.Detail == "" {
			e.Detail = resp.Status
		}
		return nil, fmt.Errorf("ask returned %d: %s", resp.StatusCode, e.Detail)
	}

	var ans rag.Answer
	if err := json.NewDecoder(resp.Body).Decode(&ans); err != nil {
		return nil, fmt.Errorf("decoding ask response: %w", err)
	}
	return &ans, nil
}
