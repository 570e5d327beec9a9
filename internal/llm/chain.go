package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elyxlabs/careloop/internal/models"
)

// Chain tries each configured client in order and returns the first
// successful completion. Unavailable clients are skipped. When every path
// fails it returns ErrGeneratorExhausted.
type Chain struct {
	clients []Client
	log     *slog.Logger
}

// NewChain builds a generation chain. Order matters: primary first.
func NewChain(log *slog.Logger, clients ...Client) *Chain {
	return &Chain{clients: clients, log: log}
}

// Available returns true when any client in the chain is available.
func (c *Chain) Available() bool {
	for _, cl := range c.clients {
		if cl.Available() {
			return true
		}
	}
	return false
}

// Generate walks the chain.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, cl := range c.clients {
		if !cl.Available() {
			continue
		}
		out, err := cl.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		c.log.Warn("generator failed, trying next", "error", err)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGeneratorExhausted, lastErr)
	}
	return "", models.ErrGeneratorExhausted
}
