package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/elyxlabs/careloop/internal/models"
)

// Collection describes a named embedding space.
type Collection struct {
	Name       string
	Space      string
	Dimensions int
}

// Store is a document vector store backed by a single SQLite file.
// It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// Open opens (or creates) the store at path, creating parent directories
// as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// CreateCollection registers a new embedding space. The dimension is fixed
// for the collection's lifetime.
func (s *Store) CreateCollection(ctx context.Context, name, space string, dimensions int) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if dimensions <= 0 {
		return fmt.Errorf("collection %s: dimensions must be positive, got %d", name, dimensions)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (name, space, dimensions, created_at) VALUES (?, ?, ?, datetime('now'))`,
		name, space, dimensions)
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// DropCollection removes a collection and its documents. Dropping a missing
// collection is not an error.
func (s *Store) DropCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", name, err)
	}
	return nil
}

// GetCollection returns a collection's metadata, or ErrIndexUnavailable when
// it does not exist.
func (s *Store) GetCollection(ctx context.Context, name string) (Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Collection
	err := s.db.QueryRowContext(ctx,
		`SELECT name, space, dimensions FROM collections WHERE name = ?`, name).
		Scan(&c.Name, &c.Space, &c.Dimensions)
	if err == sql.ErrNoRows {
		return Collection{}, fmt.Errorf("collection %s: %w", name, models.ErrIndexUnavailable)
	}
	if err != nil {
		return Collection{}, fmt.Errorf("failed to load collection %s: %w", name, err)
	}
	return c, nil
}

// AddDocuments upserts documents into a collection in one transaction.
// Last write wins on duplicate ids. Every embedding must match the
// collection's dimension.
func (s *Store) AddDocuments(ctx context.Context, collection string, docs []models.Document) error {
	c, err := s.GetCollection(ctx, collection)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO documents (collection, id, doc_type, content, metadata, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document ID is required")
		}
		if len(doc.Embedding) != c.Dimensions {
			return fmt.Errorf("document %s: embedding dimension %d does not match collection dimension %d",
				doc.ID, len(doc.Embedding), c.Dimensions)
		}
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("document %s: marshal metadata: %w", doc.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, doc.ID, doc.Type, doc.Text,
			string(meta), encodeVector(doc.Embedding)); err != nil {
			return fmt.Errorf("document %s: insert: %w", doc.ID, err)
		}
	}
	return tx.Commit()
}

// Documents returns every document in a collection, embeddings included,
// ordered by id for stable iteration.
func (s *Store) Documents(ctx context.Context, collection string) ([]models.Document, error) {
	if _, err := s.GetCollection(ctx, collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc_type, content, metadata, embedding FROM documents WHERE collection = ? ORDER BY id`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetDocument returns one document by id, or sql.ErrNoRows wrapped when
// it is missing.
func (s *Store) GetDocument(ctx context.Context, collection, id string) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, doc_type, content, metadata, embedding FROM documents WHERE collection = ? AND id = ?`,
		collection, id)

	var doc models.Document
	var meta string
	var blob []byte
	if err := row.Scan(&doc.ID, &doc.Type, &doc.Text, &meta, &blob); err != nil {
		if err == sql.ErrNoRows {
			return models.Document{}, fmt.Errorf("document %s: %w", id, err)
		}
		return models.Document{}, fmt.Errorf("failed to load document %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(meta), &doc.Metadata); err != nil {
		return models.Document{}, fmt.Errorf("document %s: unmarshal metadata: %w", id, err)
	}
	doc.Embedding = decodeVector(blob)
	return doc, nil
}

// Count returns the number of documents in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (models.Document, error) {
	var doc models.Document
	var meta string
	var blob []byte
	if err := row.Scan(&doc.ID, &doc.Type, &doc.Text, &meta, &blob); err != nil {
		return models.Document{}, fmt.Errorf("failed to scan document: %w", err)
	}
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &doc.Metadata); err != nil {
			return models.Document{}, fmt.Errorf("document %s: unmarshal metadata: %w", doc.ID, err)
		}
	}
	doc.Embedding = decodeVector(blob)
	return doc, nil
}

// encodeVector packs an embedding as little-endian float32 bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// decodeVector unpacks a little-endian float32 blob.
func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec
}
