package rag

import (
	"fmt"

	"github.com/elyxlabs/careloop/internal/models"
)

// AssembleFacts builds the per-role deterministic fact lines, each carrying
// an inline citation token. Missing source tables degrade to the available
// subset; an unknown role is ErrRoleNotFound.
func AssembleFacts(ds *Dataset, role models.Role) ([]string, error) {
	switch role {
	case models.RoleDrWarren:
		var facts []string
		if l, ok := latestLab(ds); ok {
			date := l.Date.Format(models.DateLayout)
			facts = append(facts,
				fmt.Sprintf("Latest LDL: %.1f mg/dL [lab:%s]", l.LDL, date),
				fmt.Sprintf("Latest ApoB: %.1f mg/dL [lab:%s]", l.ApoB, date))
		}
		return facts, nil

	case models.RoleAdvik:
		var facts []string
		if d, ok := latestDaily(ds); ok {
			date := d.Date.Format(models.DateLayout)
			facts = append(facts,
				fmt.Sprintf("Latest RHR: %d bpm [daily:%s]", d.RHRBpm, date),
				fmt.Sprintf("Latest HRV: %.1f ms [daily:%s]", d.HRVMs, date))
		}
		return facts, nil

	case models.RoleCarla:
		var facts []string
		if d, ok := latestDaily(ds); ok {
			facts = append(facts,
				fmt.Sprintf("Latest caloric balance: %d kcal [daily:%s]",
					d.CaloricBalance, d.Date.Format(models.DateLayout)))
		}
		if b, ok := latestBodyComp(ds); ok {
			facts = append(facts,
				fmt.Sprintf("Latest body fat: %.1f%% [body_comp:%s]",
					b.BodyfatPct, b.Date.Format(models.DateLayout)))
		}
		return facts, nil

	case models.RoleRachel:
		var facts []string
		if f, ok := latestFitness(ds); ok {
			facts = append(facts,
				fmt.Sprintf("Latest FMS score: %d [fitness:%s]",
					f.FMSScore, f.Date.Format(models.DateLayout)))
		}
		if b, ok := latestBodyComp(ds); ok {
			facts = append(facts,
				fmt.Sprintf("Latest lean mass: %.1f kg [body_comp:%s]",
					b.LeanMassKg, b.Date.Format(models.DateLayout)))
		}
		return facts, nil

	case models.RoleRuby:
		var facts []string
		if iv, ok := latestIntervention(ds); ok {
			facts = append(facts,
				fmt.Sprintf("Latest intervention: %s [intervention:%s]",
					iv.Action, iv.Date.Format(models.DateLayout)))
		}
		if e, ok := latestEvent(ds); ok {
			facts = append(facts,
				fmt.Sprintf("Latest event: %s - %s... [event:%s]",
					e.Type, truncate(e.Notes, 30), e.Date.Format(models.DateLayout)))
		}
		return facts, nil

	case models.RoleNeel:
		var facts []string
		if k, ok := latestKPI(ds); ok {
			facts = append(facts,
				fmt.Sprintf("Monthly adherence: %.2f [kpi:%s]", k.AdherenceAvg, k.Month),
				fmt.Sprintf("Value coverage: %d%% [kpi:%s]", k.RationaleCoverage, k.Month))
		}
		return facts, nil

	default:
		return nil, fmt.Errorf("%w: %q", models.ErrRoleNotFound, role)
	}
}

func latestLab(ds *Dataset) (models.LabsRow, bool) {
	if len(ds.Labs) == 0 {
		return models.LabsRow{}, false
	}
	return ds.Labs[len(ds.Labs)-1], true
}

func latestDaily(ds *Dataset) (models.DailyRow, bool) {
	if len(ds.Daily) == 0 {
		return models.DailyRow{}, false
	}
	return ds.Daily[len(ds.Daily)-1], true
}

func latestBodyComp(ds *Dataset) (models.BodyCompRow, bool) {
	if len(ds.BodyComp) == 0 {
		return models.BodyCompRow{}, false
	}
	return ds.BodyComp[len(ds.BodyComp)-1], true
}

func latestFitness(ds *Dataset) (models.FitnessRow, bool) {
	if len(ds.Fitness) == 0 {
		return models.FitnessRow{}, false
	}
	return ds.Fitness[len(ds.Fitness)-1], true
}

func latestIntervention(ds *Dataset) (models.InterventionRow, bool) {
	if len(ds.Interventions) == 0 {
		return models.InterventionRow{}, false
	}
	return ds.Interventions[len(ds.Interventions)-1], true
}

func latestEvent(ds *Dataset) (models.EventRow, bool) {
	if len(ds.Events) == 0 {
		return models.EventRow{}, false
	}
	return ds.Events[len(ds.Events)-1], true
}

func latestKPI(ds *Dataset) (models.KPIRow, bool) {
	if len(ds.KPIs) == 0 {
		return models.KPIRow{}, false
	}
	return ds.KPIs[len(ds.KPIs)-1], true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
