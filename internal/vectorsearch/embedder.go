// Package vectorsearch provides embedding orchestration and brute-force
// cosine search over document collections.
package vectorsearch

import (
	"context"
	"fmt"
	"sync"
)

// EmbedFunc is a function that returns a dense vector embedding for the given
// text. This matches the signature of llm.LocalEmbedder.Embed.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Embedder bridges an embedding function with the document store. It handles
// nomic-style task prefixes and caches the model's output dimension.
type Embedder struct {
	embed     EmbedFunc
	modelName string

	mu  sync.Mutex
	dim int
}

// NewEmbedder creates an Embedder from an embed function and model name.
// Returns nil if embedFn is nil.
func NewEmbedder(embedFn EmbedFunc, modelName string) *Embedder {
	if embedFn == nil {
		return nil
	}
	return &Embedder{
		embed:     embedFn,
		modelName: modelName,
	}
}

// Available returns true if the embedder is ready to produce embeddings.
func (e *Embedder) Available() bool {
	return e != nil && e.embed != nil
}

// ModelName returns the configured model name.
func (e *Embedder) ModelName() string {
	if e == nil {
		return ""
	}
	return e.modelName
}

// EmbedDocument embeds source text with the search_document prefix.
func (e *Embedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embed(ctx, "search_document: "+text)
	if err != nil {
		return nil, fmt.Errorf("embed document: %w", err)
	}
	e.recordDim(len(vec))
	return vec, nil
}

// EmbedQuery embeds a retrieval query with the search_query prefix.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embed(ctx, "search_query: "+text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	e.recordDim(len(vec))
	return vec, nil
}

// Dimension returns the model's output dimension, probing with a one-off
// embed on first use.
func (e *Embedder) Dimension(ctx context.Context) (int, error) {
	e.mu.Lock()
	cached := e.dim
	e.mu.Unlock()
	if cached > 0 {
		return cached, nil
	}

	vec, err := e.embed(ctx, "search_document: dimension probe")
	if err != nil {
		return 0, fmt.Errorf("probe embedding dimension: %w", err)
	}
	if len(vec) == 0 {
		return 0, fmt.Errorf("embedder returned an empty vector")
	}
	e.recordDim(len(vec))
	return len(vec), nil
}

func (e *Embedder) recordDim(n int) {
	if n == 0 {
		return
	}
	e.mu.Lock()
	if e.dim == 0 {
		e.dim = n
	}
	e.mu.Unlock()
}
