package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/elyxlabs/careloop/internal/models"
	"github.com/elyxlabs/careloop/internal/store"
	"github.com/elyxlabs/careloop/internal/vectorsearch"
)

// DefaultTopK is the retrieval depth when the caller does not override it.
const DefaultTopK = 3

// maxDocTextLen bounds the retrieved text returned to the prompt.
const maxDocTextLen = 300

// roleDocTypes is the per-persona document-type allow-list.
var roleDocTypes = map[models.Role][]string{
	models.RoleRuby:     {models.DocEvent, models.DocIntervention, models.DocChat, models.DocDaily, models.DocFitness, models.DocBodyComp},
	models.RoleDrWarren: {models.DocLab, models.DocIntervention, models.DocChat},
	models.RoleAdvik:    {models.DocDaily, models.DocFitness, models.DocChat},
	models.RoleCarla:    {models.DocDaily, models.DocBodyComp, models.DocChat},
	models.RoleRachel:   {models.DocFitness, models.DocBodyComp, models.DocChat},
	models.RoleNeel:     {models.DocKPI, models.DocIntervention, models.DocChat},
}

// RetrievedDoc is one search hit handed to the prompt builder.
type RetrievedDoc struct {
	ID       string
	Text     string
	Metadata map[string]any
	Score    float64
}

// Retriever embeds queries and searches the collection with per-role type
// filters.
type Retriever struct {
	store    *store.Store
	embedder *vectorsearch.Embedder
}

// NewRetriever wires a retriever over the store and embedder.
func NewRetriever(s *store.Store, e *vectorsearch.Embedder) *Retriever {
	return &Retriever{store: s, embedder: e}
}

// Retrieve returns the top-k documents for the query, restricted to the
// role's allowed types and, when since is non-zero, to documents dated on or
// after it (explicit conjunction). Unknown roles normalize to the default.
// A missing or dimension-mismatched collection is ErrIndexUnavailable.
func (r *Retriever) Retrieve(ctx context.Context, query string, role models.Role, k int, since time.Time) ([]RetrievedDoc, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	allowed, ok := roleDocTypes[role]
	if !ok {
		allowed = roleDocTypes[models.DefaultRole]
	}
	allowedSet := make(map[string]bool, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = true
	}

	collection, err := r.store.GetCollection(ctx, CollectionName)
	if err != nil {
		return nil, err
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(queryVec) != collection.Dimensions {
		return nil, fmt.Errorf("query dimension %d does not match collection dimension %d: %w",
			len(queryVec), collection.Dimensions, models.ErrIndexUnavailable)
	}

	docs, err := r.store.Documents(ctx, CollectionName)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	candidates := docs[:0:0]
	for _, d := range docs {
		if !allowedSet[d.Type] {
			continue
		}
		if !since.IsZero() && !onOrAfter(d, since) {
			continue
		}
		candidates = append(candidates, d)
	}

	results := vectorsearch.BruteForceSearch(queryVec, candidates, k)
	out := make([]RetrievedDoc, 0, len(results))
	for _, res := range results {
		out = append(out, RetrievedDoc{
			ID:       res.Document.ID,
			Text:     truncate(res.Document.Text, maxDocTextLen),
			Metadata: res.Document.Metadata,
			Score:    res.Score,
		})
	}
	return out, nil
}

// onOrAfter reports whether the document's date (or month) is on or after
// since. Undated documents pass the filter.
func onOrAfter(d models.Document, since time.Time) bool {
	ds := d.Date()
	if ds == "" {
		return true
	}
	if t, err := time.Parse(models.DateLayout, ds); err == nil {
		return !t.Before(since)
	}
	if t, err := time.Parse(models.MonthLayout, ds); err == nil {
		// A month passes if any of its days could be in range.
		return !t.AddDate(0, 1, -1).Before(since)
	}
	return true
}
