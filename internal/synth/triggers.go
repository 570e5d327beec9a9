package synth

import (
	"github.com/elyxlabs/careloop/internal/models"
)

// Rule identifiers for the intervention engine.
const (
	RuleCardioDrift = "CV-01"
	RuleLipid       = "LIP-02"
)

// rhrWindow is a fixed-size ring buffer over the last seven RHR readings.
type rhrWindow struct {
	vals [7]float64
	n    int
	head int
	sum  float64
}

func (w *rhrWindow) push(v float64) {
	if w.n == len(w.vals) {
		w.sum -= w.vals[w.head]
	} else {
		w.n++
	}
	w.vals[w.head] = v
	w.sum += v
	w.head = (w.head + 1) % len(w.vals)
}

func (w *rhrWindow) full() bool { return w.n == len(w.vals) }

func (w *rhrWindow) mean() float64 { return w.sum / float64(w.n) }

// Interventions scans the finished daily and lab tables and applies the two
// rule families. CV-01 fires per qualifying day once the 7-day RHR window is
// full (never before day index 6): elevated rolling RHR or a day-over-day HRV
// drop beyond the configured fraction. LIP-02 fires on every lab panel whose
// LDL exceeds the threshold. Each firing carries the literal trigger metric
// and value so it can be reproduced from the source row.
func (g *Generator) Interventions(daily []models.DailyRow, labs []models.LabsRow) []models.InterventionRow {
	ir := g.rules.Interventions
	baseline := g.profile.Baselines.RHR

	var rows []models.InterventionRow
	var win rhrWindow
	for i, d := range daily {
		win.push(float64(d.RHRBpm))
		if !win.full() {
			continue
		}

		rhr7 := win.mean()
		hrvDrop := 0.0
		if i > 0 {
			prev := daily[i-1].HRVMs
			if prev < 1e-6 {
				prev = 1e-6
			}
			hrvDrop = (prev - d.HRVMs) / prev
		}

		if rhr7 > baseline+ir.RHR7dAboveBaseline || hrvDrop > ir.HRVDropPct {
			rows = append(rows, models.InterventionRow{
				Date:          d.Date,
				RuleID:        RuleCardioDrift,
				TriggerMetric: "rhr_7d_avg",
				TriggerValue:  round1(rhr7),
				Action:        "deload week; sleep hygiene; -20% intensity",
				Owner:         "coach",
				FollowUpDate:  d.Date.AddDate(0, 0, 7),
				Notes:         "Auto-trigger based on HR trend",
			})
		}
	}

	for _, l := range labs {
		if l.LDL > ir.LDLThreshold {
			rows = append(rows, models.InterventionRow{
				Date:          l.Date,
				RuleID:        RuleLipid,
				TriggerMetric: "ldl_mgdl",
				TriggerValue:  round1(l.LDL),
				Action:        "tighten diet; +1 cardio; omega-3",
				Owner:         "nutritionist",
				FollowUpDate:  l.Date.AddDate(0, 0, 84),
				Notes:         "Triggered by LDL at quarterly",
			})
		}
	}
	return rows
}
