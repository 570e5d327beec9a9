// Package llm provides text generation clients for the QA answer chain and a
// local GGUF embedder. Generation supports a keyed Gemini pool with model
// ladder and retries, an OpenRouter-compatible fallback, and a deterministic
// extractive client for offline use.
package llm

import (
	"context"
)

// Client is a text generator.
type Client interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Available returns true if the client is configured and ready to
	// handle requests. For API-based clients, this checks that credentials
	// are present.
	Available() bool
}

// Closer is an optional interface for clients that hold resources requiring
// cleanup. Consumers should type-assert and call Close when done.
type Closer interface {
	Close() error
}
