package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elyxlabs/careloop/internal/logging"
	"github.com/elyxlabs/careloop/internal/store"
	"github.com/elyxlabs/careloop/internal/vectorsearch"
)

// CollectionName is the single collection the QA service searches.
const CollectionName = "elyx_docs"

// ingestBatchSize bounds how many documents are embedded and written per
// transaction.
const ingestBatchSize = 50

// Ingestor loads a generated dataset and indexes it into the vector store.
type Ingestor struct {
	store     *store.Store
	embedder  *vectorsearch.Embedder
	log       *slog.Logger
	decisions *logging.DecisionLogger
}

// NewIngestor wires an ingestor. The decision logger may be nil.
func NewIngestor(s *store.Store, e *vectorsearch.Embedder, log *slog.Logger, decisions *logging.DecisionLogger) *Ingestor {
	return &Ingestor{store: s, embedder: e, log: log, decisions: decisions}
}

// Ingest reads the dataset from dir and rebuilds the collection from scratch:
// drop, recreate with the embedder's dimension, then embed and add documents
// in batches. Returns the number of documents indexed.
func (ing *Ingestor) Ingest(ctx context.Context, dir string) (int, error) {
	ds, err := LoadDataset(dir, ing.log)
	if err != nil {
		return 0, fmt.Errorf("loading dataset: %w", err)
	}
	docs := BuildDocuments(ds)

	dim, err := ing.embedder.Dimension(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolving embedding dimension: %w", err)
	}

	if err := ing.store.DropCollection(ctx, CollectionName); err != nil {
		return 0, fmt.Errorf("dropping collection: %w", err)
	}
	if err := ing.store.CreateCollection(ctx, CollectionName, "cosine", dim); err != nil {
		return 0, fmt.Errorf("creating collection: %w", err)
	}
	ing.decisions.Decision("ingest", "collection_rebuilt", "full reindex on every ingest", map[string]any{
		"collection": CollectionName,
		"dimensions": dim,
		"documents":  len(docs),
	})

	for start := 0; start < len(docs); start += ingestBatchSize {
		end := start + ingestBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]
		for i := range batch {
			vec, err := ing.embedder.EmbedDocument(ctx, batch[i].Text)
			if err != nil {
				return 0, fmt.Errorf("embedding document %s: %w", batch[i].ID, err)
			}
			batch[i].Embedding = vec
		}
		if err := ing.store.AddDocuments(ctx, CollectionName, batch); err != nil {
			return 0, fmt.Errorf("adding batch at %d: %w", start, err)
		}
		ing.log.Debug("ingested batch", "from", start, "to", end)
	}

	n, err := ing.store.Count(ctx, CollectionName)
	if err != nil {
		return 0, err
	}
	ing.log.Info("ingest complete", "collection", CollectionName, "documents", n)
	return n, nil
}
