package synth

import (
	"time"

	"github.com/elyxlabs/careloop/internal/models"
)

// Fitness steps week by week, deriving training load from the daily table
// (cardio sessions from active minutes, strength sessions from soreness) and
// drifting VO2max, grip, FMS, body composition, and FEV1 accordingly. It
// returns the weekly fitness and body-composition tables together since they
// share the week loop. Row dates are capped at the window end.
func (g *Generator) Fitness(daily []models.DailyRow) ([]models.FitnessRow, []models.BodyCompRow) {
	start := g.profile.Start()
	end := g.profile.End()
	b := g.profile.Baselines
	fr := g.rules.Fitness
	br := g.rules.BodyCompMonthly

	vo2 := b.VO2Max
	grip := b.GripKg
	fms := b.FMS
	bodyfat := b.BodyfatPct
	lean := b.LeanMassKg
	fev1 := b.FEV1L

	var fit []models.FitnessRow
	var comp []models.BodyCompRow
	for w := 0; ; w++ {
		weekStart := start.AddDate(0, 0, 7*w)
		if weekStart.After(end) {
			break
		}
		weekEnd := weekStart.AddDate(0, 0, 6)

		adh, cardio, strength := weekLoad(daily, weekStart, weekEnd, g.profile.Adherence.Base)

		if cardio >= 3 && adh > 0.7 {
			vo2 += g.rng.Draw(fr.VO2WeeklyGainIfCardio3)
		} else {
			vo2 -= fr.VO2WeeklyLossIfLow
		}
		vo2 = clamp(round1(vo2), 30, 50)

		if strength >= 2 && adh > 0.7 {
			grip += g.rng.Draw(fr.GripWeeklyGainIfStrength2)
		}
		grip = clamp(round1(grip), 20, 80)

		monthlyWeek := w > 0 && w%4 == 0
		if monthlyWeek && adh > 0.7 {
			fms = clampInt(fms+roundInt(fr.FMSGainPer4wIfMobility2), 0, 21)
		}
		if monthlyWeek {
			bodyfat = clamp(round1(bodyfat-g.rng.Draw(br.BodyfatDrop)*adh), 18, 28)
			lean = clamp(round1(lean+br.LeanMassGain*adh), 10, 200)
			fev1 = clamp(round2(fev1+g.rng.Draw(fr.SpirometryMonthlyGain)), 1, 6)
		}

		date := minDate(weekEnd, end)
		fiveK := round1(30 + max(0.0, 55-vo2)*0.5)

		fit = append(fit, models.FitnessRow{
			Date:       date,
			VO2MaxEst:  vo2,
			FiveKmMin:  fiveK,
			DeadliftKg: int(110 + grip*0.5),
			SquatKg:    int(90 + grip*0.3),
			GripKg:     grip,
			FMSScore:   fms,
			FEV1L:      fev1,
		})
		comp = append(comp, models.BodyCompRow{
			Date:       date,
			BodyfatPct: bodyfat,
			LeanMassKg: lean,
			BoneTScore: 0.2,
		})
	}
	return fit, comp
}

// weekLoad computes the week's mean adherence, cardio session count
// (active minutes above 35), and strength session count (soreness above 3).
func weekLoad(daily []models.DailyRow, from, to time.Time, fallbackAdh float64) (adh float64, cardio, strength int) {
	var vals []float64
	for _, d := range daily {
		if d.Date.Before(from) || d.Date.After(to) {
			continue
		}
		vals = append(vals, d.Adherence)
		if d.ActiveMinutes > 35 {
			cardio++
		}
		if d.Soreness > 3 {
			strength++
		}
	}
	if len(vals) == 0 {
		return fallbackAdh, 0, 0
	}
	return mean(vals), cardio, strength
}
