package vectorsearch

import (
	"context"
	"fmt"
	"testing"
)

func TestNewEmbedderNilFunc(t *testing.T) {
	e := NewEmbedder(nil, "model")
	if e != nil {
		t.Error("NewEmbedder(nil) should return nil")
	}
	if e.Available() {
		t.Error("nil embedder should not be available")
	}
}

func TestEmbedderPrefixes(t *testing.T) {
	var got string
	embed := func(ctx context.Context, text string) ([]float32, error) {
		got = text
		return []float32{1, 2, 3}, nil
	}
	e := NewEmbedder(embed, "all-MiniLM-L6-v2")

	if _, err := e.EmbedDocument(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	if want := "search_document: hello"; got != want {
		t.Errorf("document prefix: got %q, want %q", got, want)
	}

	if _, err := e.EmbedQuery(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	if want := "search_query: hello"; got != want {
		t.Errorf("query prefix: got %q, want %q", got, want)
	}
}

func TestEmbedderDimensionProbe(t *testing.T) {
	calls := 0
	embed := func(ctx context.Context, text string) ([]float32, error) {
		calls++
		return make([]float32, 384), nil
	}
	e := NewEmbedder(embed, "all-MiniLM-L6-v2")

	dim, err := e.Dimension(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if dim != 384 {
		t.Errorf("dimension = %d, want 384", dim)
	}
	if calls != 1 {
		t.Errorf("probe made %d calls, want 1", calls)
	}

	// Cached on second ask.
	if _, err := e.Dimension(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("second Dimension made %d total calls, want 1", calls)
	}
}

func TestEmbedderDimensionCachedFromEmbed(t *testing.T) {
	calls := 0
	embed := func(ctx context.Context, text string) ([]float32, error) {
		calls++
		return []float32{1, 2}, nil
	}
	e := NewEmbedder(embed, "m")

	if _, err := e.EmbedDocument(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	dim, err := e.Dimension(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if dim != 2 {
		t.Errorf("dimension = %d, want 2", dim)
	}
	if calls != 1 {
		t.Errorf("Dimension probed despite cached value; %d calls", calls)
	}
}

func TestEmbedderError(t *testing.T) {
	embed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("model not loaded")
	}
	e := NewEmbedder(embed, "m")
	if _, err := e.EmbedQuery(context.Background(), "x"); err == nil {
		t.Error("expected error from failing embed func")
	}
	if _, err := e.Dimension(context.Background()); err == nil {
		t.Error("expected error from failing dimension probe")
	}
}
