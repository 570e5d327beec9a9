package vectorsearch

import (
	"sort"

	"github.com/elyxlabs/careloop/internal/models"
	"github.com/elyxlabs/careloop/internal/vecmath"
)

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document models.Document
	Score    float64
}

// BruteForceSearch scores every candidate against queryVec with cosine
// similarity and returns the topK results by descending score. Ties keep the
// candidates' input order, which is stable for store iteration order.
func BruteForceSearch(queryVec []float32, candidates []models.Document, topK int) []SearchResult {
	if len(queryVec) == 0 || len(candidates) == 0 || topK <= 0 {
		return nil
	}

	results := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, SearchResult{
			Document: c,
			Score:    vecmath.CosineSimilarity(queryVec, c.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK]
}
