package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elyxlabs/careloop/internal/llm"
	"github.com/elyxlabs/careloop/internal/logging"
	"github.com/elyxlabs/careloop/internal/models"
	"github.com/elyxlabs/careloop/internal/store"
	"github.com/elyxlabs/careloop/internal/vectorsearch"
)

// Answer is the QA service response.
type Answer struct {
	Role    models.Role `json:"role"`
	Answer  string      `json:"answer"`
	Sources []string    `json:"sources"`
}

// Service answers member questions over the indexed dataset. Per request the
// order is fixed: route, retrieve, assemble facts, generate, enforce
// citations. Safe for concurrent use: store reads are lock-guarded, the
// generator's credential rotation is atomic, and the dataset is read-only
// after load.
type Service struct {
	dataset   *Dataset
	retriever *Retriever
	generator llm.Client
	log       *slog.Logger
	decisions *logging.DecisionLogger
}

// NewService wires the QA service. The decision logger may be nil.
func NewService(ds *Dataset, s *store.Store, e *vectorsearch.Embedder, generator llm.Client, log *slog.Logger, decisions *logging.DecisionLogger) *Service {
	return &Service{
		dataset:   ds,
		retriever: NewRetriever(s, e),
		generator: generator,
		log:       log,
		decisions: decisions,
	}
}

// Ask answers one question. explicitRole may be empty; since may be zero.
func (s *Service) Ask(ctx context.Context, question, explicitRole string, since time.Time) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	role := Route(question, explicitRole)
	s.decisions.Decision("router", "routed", "phrase and keyword scoring", map[string]any{
		"role":     role.String(),
		"explicit": explicitRole,
	})

	docs, err := s.retriever.Retrieve(ctx, question, role, DefaultTopK, since)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	facts, err := AssembleFacts(s.dataset, role)
	if err != nil {
		return nil, fmt.Errorf("assembling facts: %w", err)
	}

	prompt := BuildPrompt(role, facts, docs, question)
	s.log.Log(ctx, logging.LevelTrace, "generation prompt", "role", role.String(), "prompt", prompt)

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	answer := EnforceCitations(raw, ids, facts)
	if answer != raw {
		s.log.Debug("citation missing, appended general context", "role", role.String())
	}

	return &Answer{Role: role, Answer: answer, Sources: ids}, nil
}

// Roles returns the closed persona set and the default.
func (s *Service) Roles() ([]models.Role, models.Role) {
	return models.AllRoles(), models.DefaultRole
}
