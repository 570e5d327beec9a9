package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/elyxlabs/careloop/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "careloop.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.GetCollection(ctx, "elyx_docs"); !errors.Is(err, models.ErrIndexUnavailable) {
		t.Fatalf("missing collection error = %v, want ErrIndexUnavailable", err)
	}

	if err := s.CreateCollection(ctx, "elyx_docs", "cosine", 4); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	c, err := s.GetCollection(ctx, "elyx_docs")
	if err != nil {
		t.Fatalf("GetCollection: %v", err)
	}
	if c.Space != "cosine" || c.Dimensions != 4 {
		t.Errorf("collection = %+v, want cosine/4", c)
	}

	if err := s.DropCollection(ctx, "elyx_docs"); err != nil {
		t.Fatalf("DropCollection: %v", err)
	}
	if _, err := s.GetCollection(ctx, "elyx_docs"); !errors.Is(err, models.ErrIndexUnavailable) {
		t.Fatalf("dropped collection error = %v, want ErrIndexUnavailable", err)
	}
	// Dropping again is a no-op.
	if err := s.DropCollection(ctx, "elyx_docs"); err != nil {
		t.Fatalf("second DropCollection: %v", err)
	}
}

func TestAddDocumentsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.CreateCollection(ctx, "elyx_docs", "cosine", 3); err != nil {
		t.Fatal(err)
	}
	docs := []models.Document{
		{
			ID:        "lab:2025-01-01",
			Type:      models.DocLab,
			Text:      "2025-01-01 | LDL 150.0 mg/dL",
			Metadata:  map[string]any{"date": "2025-01-01", "ldl": 150.0},
			Embedding: []float32{1, 0, 0},
		},
		{
			ID:        "daily:2025-01-01",
			Type:      models.DocDaily,
			Text:      "2025-01-01 | RHR 65 bpm",
			Metadata:  map[string]any{"date": "2025-01-01", "rhr": 65.0},
			Embedding: []float32{0, 1, 0},
		},
	}
	if err := s.AddDocuments(ctx, "elyx_docs", docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	n, err := s.Count(ctx, "elyx_docs")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}

	got, err := s.GetDocument(ctx, "elyx_docs", "lab:2025-01-01")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Type != models.DocLab {
		t.Errorf("type = %q, want %q", got.Type, models.DocLab)
	}
	if got.Text != docs[0].Text {
		t.Errorf("text = %q, want %q", got.Text, docs[0].Text)
	}
	if len(got.Embedding) != 3 || got.Embedding[0] != 1 {
		t.Errorf("embedding = %v, want [1 0 0]", got.Embedding)
	}
	if got.Metadata["ldl"] != 150.0 {
		t.Errorf("metadata ldl = %v, want 150", got.Metadata["ldl"])
	}
}

func TestAddDocumentsUpsert(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.CreateCollection(ctx, "elyx_docs", "cosine", 2); err != nil {
		t.Fatal(err)
	}

	first := models.Document{ID: "event:2025-02-01", Type: models.DocEvent, Text: "old", Embedding: []float32{1, 0}}
	second := models.Document{ID: "event:2025-02-01", Type: models.DocEvent, Text: "new", Embedding: []float32{0, 1}}
	if err := s.AddDocuments(ctx, "elyx_docs", []models.Document{first, second}); err != nil {
		t.Fatal(err)
	}

	n, _ := s.Count(ctx, "elyx_docs")
	if n != 1 {
		t.Fatalf("Count after upsert = %d, want 1", n)
	}
	got, err := s.GetDocument(ctx, "elyx_docs", "event:2025-02-01")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "new" {
		t.Errorf("upsert kept %q, want last write", got.Text)
	}
}

func TestAddDocumentsDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.CreateCollection(ctx, "elyx_docs", "cosine", 4); err != nil {
		t.Fatal(err)
	}

	err := s.AddDocuments(ctx, "elyx_docs", []models.Document{
		{ID: "daily:2025-01-01", Type: models.DocDaily, Text: "x", Embedding: []float32{1, 2}},
	})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	n, _ := s.Count(ctx, "elyx_docs")
	if n != 0 {
		t.Errorf("mismatched add left %d documents, want 0", n)
	}
}

func TestDocumentsOrdering(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.CreateCollection(ctx, "elyx_docs", "cosine", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.AddDocuments(ctx, "elyx_docs", []models.Document{
		{ID: "b", Type: models.DocDaily, Text: "b", Embedding: []float32{1}},
		{ID: "a", Type: models.DocDaily, Text: "a", Embedding: []float32{2}},
	}); err != nil {
		t.Fatal(err)
	}

	docs, err := s.Documents(ctx, "elyx_docs")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].ID != "a" || docs[1].ID != "b" {
		t.Errorf("documents not ordered by id: %v, %v", docs[0].ID, docs[1].ID)
	}
}

func TestReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "careloop.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreateCollection(ctx, "elyx_docs", "cosine", 2); err != nil {
		t.Fatal(err)
	}
	if err := s.AddDocuments(ctx, "elyx_docs", []models.Document{
		{ID: "kpi:2025-01", Type: models.DocKPI, Text: "jan", Embedding: []float32{1, 1}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	n, err := s2.Count(ctx, "elyx_docs")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count after reopen = %d, want 1", n)
	}
}

func TestVectorCodec(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.75, 0}
	got := decodeVector(encodeVector(vec))
	if len(got) != len(vec) {
		t.Fatalf("decoded length %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("index %d: got %v, want %v", i, got[i], vec[i])
		}
	}
}
