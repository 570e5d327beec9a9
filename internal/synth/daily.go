package synth

import (
	"github.com/elyxlabs/careloop/internal/models"
)

// Daily walks the window day by day and produces the vitals table. The
// per-day draw order is part of the determinism contract: adherence, steps,
// active minutes, sleep, sleep quality, stress, soreness, caloric balance,
// weight, then RHR/HRV. The weight walk reads the day's fresh adherence.
func (g *Generator) Daily(events []models.EventRow) []models.DailyRow {
	start := g.profile.Start()
	end := g.profile.End()
	idx := indexEvents(events)

	ar := g.rules.Adherence
	sr := g.rules.Sleep
	wr := g.rules.Weight
	rr := g.rules.RHR
	hr := g.rules.HRV

	weight := g.profile.Baselines.WeightKg
	rhr := roundInt(g.profile.Baselines.RHR)
	hrv := g.profile.Baselines.HRV
	noLossDays := 0

	var rows []models.DailyRow
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		travel, illness := idx.byType(dateKey(day))
		onTravel := len(travel) > 0
		onIllness := len(illness) > 0

		adh := g.profile.Adherence.Base
		for _, e := range travel {
			adh -= ar.TravelPenaltyPerDay * float64(e.Intensity)
		}
		for _, e := range illness {
			adh -= ar.IllnessPenaltyPerDay * float64(e.Intensity)
		}
		adh = clamp(adh+g.rng.Gauss(0, ar.NoiseStd), 0, 1)

		steps := int(4000 + adh*6000 + g.rng.Gauss(0, 500))
		active := int(adh*60 + g.rng.Gauss(0, 5))
		if active < 0 {
			active = 0
		}

		sleepBase := sr.Base
		if onTravel {
			sleepBase -= g.rng.Draw(sr.TravelDrop)
		}
		sleep := clamp(sleepBase+g.rng.Gauss(0, sr.NoiseStd), 4.5, 8.5)

		quality := clampInt(roundInt(3+(sleep-6.5)*0.4+g.rng.Gauss(0, 0.4)), 1, 5)

		stress := 3.0 + float64(len(travel)) + float64(len(illness))
		stressScore := clampInt(roundInt(stress+g.rng.Gauss(0, 0.5)), 1, 5)

		sore := 0.0
		if g.rng.Bernoulli(0.3) {
			sore = 1
		}
		soreness := clampInt(roundInt(sore+g.rng.Gauss(0.5, 1.0)), 0, 10)

		caloric := int(-300*adh + g.rng.Gauss(0, 100))

		weeklyLoss := 0.0
		if caloric < 0 {
			weeklyLoss = wr.WeeklyLossIfHighAdherence * adh
		}
		if noLossDays >= wr.PlateauAfterDays {
			weeklyLoss = wr.PlateauWeeklyLoss
		}
		delta := -weeklyLoss/7 + g.rng.Gauss(0, wr.NoiseStd)/7
		if onTravel {
			delta += wr.TravelWaterGain / 7
		}
		newWeight := clamp(weight+delta, g.profile.Bounds.MinWeightKg, g.profile.Bounds.MaxWeightKg)
		if newWeight >= weight-0.01 {
			noLossDays++
		} else {
			noLossDays = 0
		}
		weight = newWeight

		rhrF := float64(rhr) + g.rng.Gauss(0, rr.NoiseStd)
		hrvF := hrv + g.rng.Gauss(0, hr.NoiseStd)
		if onTravel {
			rhrF += g.rng.Draw(rr.TravelBump)
			hrvF -= g.rng.Draw(hr.TravelDrop)
		}
		if onIllness {
			rhrF += g.rng.Draw(rr.IllnessBump)
			hrvF -= g.rng.Draw(hr.IllnessDrop)
		}
		if adh > 0.75 && sleep > 6.8 {
			rhrF -= rr.WeeklyDropIfCardio3 / 7
			hrvF += g.rng.Draw(hr.WeeklyGainIfGoodSleep) / 7
		}
		rhr = clampInt(roundInt(rhrF), 40, 120)
		hrv = clamp(round1(hrvF), 10, 200)

		rows = append(rows, models.DailyRow{
			Date:           day,
			Adherence:      adh,
			Steps:          steps,
			ActiveMinutes:  active,
			WeightKg:       weight,
			RHRBpm:         rhr,
			HRVMs:          hrv,
			SleepHours:     sleep,
			SleepQuality:   quality,
			StressScore:    stressScore,
			Soreness:       soreness,
			CaloricBalance: caloric,
		})
	}
	return rows
}
