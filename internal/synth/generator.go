package synth

import (
	"log/slog"

	"github.com/elyxlabs/careloop/internal/config"
	"github.com/elyxlabs/careloop/internal/logging"
	"github.com/elyxlabs/careloop/internal/models"
)

// Generator produces the member's dataset from a profile and rule set. Stages
// run in a fixed order over a single seeded RNG; each stage reads the outputs
// of earlier stages.
type Generator struct {
	profile   *config.Profile
	rules     *config.Rules
	rng       *RNG
	log       *slog.Logger
	decisions *logging.DecisionLogger
}

// NewGenerator creates a generator seeded from the profile. The decision
// logger may be nil.
func NewGenerator(profile *config.Profile, rules *config.Rules, log *slog.Logger, decisions *logging.DecisionLogger) *Generator {
	return &Generator{
		profile:   profile,
		rules:     rules,
		rng:       NewRNG(profile.Seed),
		log:       log,
		decisions: decisions,
	}
}

// eventIndex groups event rows by day for O(1) lookup in the daily walk.
type eventIndex map[string][]models.EventRow

func indexEvents(events []models.EventRow) eventIndex {
	idx := make(eventIndex, len(events))
	for _, e := range events {
		k := dateKey(e.Date)
		idx[k] = append(idx[k], e)
	}
	return idx
}

// byType splits a day's events into travel and illness rows.
func (idx eventIndex) byType(k string) (travel, illness []models.EventRow) {
	for _, e := range idx[k] {
		switch e.Type {
		case models.EventTravel:
			travel = append(travel, e)
		case models.EventIllness:
			illness = append(illness, e)
		}
	}
	return travel, illness
}
