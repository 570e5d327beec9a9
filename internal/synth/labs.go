package synth

import (
	"time"

	"github.com/elyxlabs/careloop/internal/models"
)

// Labs emits one panel per scheduled quarterly date. Improvement scales with
// the mean adherence over the preceding 84 days and the quarters elapsed;
// panels not modeled dynamically are held near baseline.
func (g *Generator) Labs(daily []models.DailyRow) []models.LabsRow {
	start := g.profile.Start()
	end := g.profile.End()
	b := g.profile.Baselines
	gr := g.rules.GlycemicMonthly
	lr := g.rules.LipidsMonthly
	ir := g.rules.Inflammation

	var rows []models.LabsRow
	for _, w := range g.profile.LabWeeks() {
		date := start.AddDate(0, 0, 7*w)
		if date.After(end) {
			continue
		}

		adh := g.trailingAdherence(daily, date)
		monthsSince := monthsBetween(start, date)
		if monthsSince < 1 {
			monthsSince = 1
		}
		quarters := monthsSince / 3
		if quarters < 1 {
			quarters = 1
		}

		fpg := b.FastingGlucose - g.rng.Draw(gr.FastingDropIfGood)*adh*float64(quarters)
		ogtt := b.OGTT2h - g.rng.Draw(gr.OGTT2hDropIfGood)*adh*float64(quarters)
		fpg += g.rng.Gauss(0, gr.NoiseStd)
		ogtt += g.rng.Gauss(0, gr.NoiseStd)

		m := float64(monthsSince)
		effort := adh * 0.33
		ldl := b.LDL - m*g.rng.Draw(lr.LDLDropIfGood)*effort
		hdl := b.HDL + m*g.rng.Draw(lr.HDLGainIfGood)*effort
		tg := b.Triglycerides - m*g.rng.Draw(lr.TGDropIfGood)*effort
		ldl += g.rng.Gauss(0, lr.NoiseStd)
		hdl += g.rng.Gauss(0, lr.NoiseStd)
		tg += g.rng.Gauss(0, lr.NoiseStd)

		ldl = clamp(ldl, 40, 300)
		hdl = clamp(hdl, 20, 120)
		tg = clamp(tg, 30, 1000)
		total := clamp(ldl+hdl+tg/5, 80, 800)
		apob := clamp(100+(ldl-b.LDL)*0.3, 40, 250)
		apoa1 := clamp(140+(hdl-b.HDL)*0.8, 60, 250)

		crp := 1.0 + g.rng.Gauss(0, ir.NoiseStd)
		crp -= (crp - 1.0) * ir.MeanRevertRate
		crp = clamp(crp, 0, 20)

		rows = append(rows, models.LabsRow{
			Date:           date,
			FastingGlucose: round1(clamp(fpg, 50, 200)),
			OGTT2h:         round1(clamp(ogtt, 70, 300)),
			FastingInsulin: 10.0,
			TotalChol:      round1(total),
			LDL:            round1(ldl),
			HDL:            round1(hdl),
			Triglycerides:  round1(tg),
			ApoB:           round1(apob),
			ApoA1:          round1(apoa1),
			LpA:            60,
			CRP:            round2(crp),
			ESR:            9,
			ALT:            30,
			AST:            27,
			Creatinine:     1.0,
			EGFR:           95,
			TSH:            2.0,
			T3:             120.0,
			T4:             8.2,
			Cortisol:       16.0,
			VitD:           round1(clamp(24.0, 5, 80)),
			B12:            round1(clamp(420.0, 100, 2000)),
			Ferritin:       round1(clamp(120.0, 10, 1000)),
			Omega3Index:    round2(clamp(5.0, 1, 14)),
		})
	}
	return rows
}

// trailingAdherence averages daily adherence over the 84 days before date,
// falling back to the profile base when no rows are in range.
func (g *Generator) trailingAdherence(daily []models.DailyRow, date time.Time) float64 {
	since := date.AddDate(0, 0, -84)
	var vals []float64
	for _, d := range daily {
		if d.Date.Before(since) || d.Date.After(date) {
			continue
		}
		vals = append(vals, d.Adherence)
	}
	if len(vals) == 0 {
		return g.profile.Adherence.Base
	}
	return mean(vals)
}
