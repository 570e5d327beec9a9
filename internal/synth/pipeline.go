package synth

import (
	"fmt"
	"os"

	"github.com/elyxlabs/careloop/internal/models"
)

// Result reports the row counts of one pipeline run.
type Result struct {
	Events        int
	Daily         int
	Labs          int
	Fitness       int
	BodyComp      int
	Interventions int
	Chats         int
	KPIs          int
	Weekly        int
}

// Run executes every stage in fixed order and writes the dataset to dir.
// The stage order is part of the determinism contract: events, daily, labs,
// fitness/body-comp, interventions, chats, KPIs, weekly.
func (g *Generator) Run(dir string) (*Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	events := g.Events()
	daily := g.Daily(events)
	labs := g.Labs(daily)
	fitness, bodyComp := g.Fitness(daily)
	interventions := g.Interventions(daily, labs)
	chats := g.Chats(interventions)
	kpis := g.KPIs(daily, labs, fitness, chats)
	weekly := g.Weekly(daily, events)

	g.decisions.Decision("synth", "stages_complete", "all stages ran in fixed order", map[string]any{
		"seed":          g.profile.Seed,
		"events":        len(events),
		"interventions": len(interventions),
	})

	member := models.Member{
		MemberID:         g.profile.Member.MemberID,
		Name:             g.profile.Member.Name,
		Age:              g.profile.Member.Age,
		Sex:              g.profile.Member.Sex,
		Goals:            g.profile.Member.Goals,
		ChronicCondition: g.profile.Member.ChronicCondition,
		Residence:        g.profile.Member.Residence,
	}

	writers := []func() error{
		func() error { return writeEvents(dir, events) },
		func() error { return writeDaily(dir, daily) },
		func() error { return writeLabs(dir, labs) },
		func() error { return writeFitness(dir, fitness) },
		func() error { return writeBodyComp(dir, bodyComp) },
		func() error { return writeInterventions(dir, interventions) },
		func() error { return writeChats(dir, chats) },
		func() error { return writeKPIs(dir, kpis) },
		func() error { return writeWeekly(dir, weekly) },
		func() error { return writeProfile(dir, member) },
	}
	for _, w := range writers {
		if err := w(); err != nil {
			return nil, err
		}
	}

	g.log.Info("dataset written",
		"dir", dir,
		"days", len(daily),
		"labs", len(labs),
		"interventions", len(interventions),
		"chats", len(chats))

	return &Result{
		Events:        len(events),
		Daily:         len(daily),
		Labs:          len(labs),
		Fitness:       len(fitness),
		BodyComp:      len(bodyComp),
		Interventions: len(interventions),
		Chats:         len(chats),
		KPIs:          len(kpis),
		Weekly:        len(weekly),
	}, nil
}
