package llm

import (
	"context"
	"sync"
)

// MockClient implements Client for testing. It returns a configured response
// or error and records every prompt it was asked to generate for.
type MockClient struct {
	mu sync.Mutex

	response  string
	err       error
	available bool

	// Prompts records each Generate call in order.
	Prompts []string
}

// NewMockClient creates an available mock returning an empty response.
func NewMockClient() *MockClient {
	return &MockClient{available: true}
}

// WithResponse configures the response returned by Generate.
func (m *MockClient) WithResponse(response string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithError configures the error returned by Generate.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithAvailable configures the Available result.
func (m *MockClient) WithAvailable(available bool) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
	return m
}

// Generate records the prompt and returns the configured result.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// Available returns the configured availability.
func (m *MockClient) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// CallCount returns the number of Generate calls so far.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
