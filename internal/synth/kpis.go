package synth

import (
	"sort"

	"github.com/elyxlabs/careloop/internal/models"
)

// KPIs rolls the finished tables up into one row per calendar month. LDL and
// VO2max changes are month-over-month diffs of forward-filled month-end
// values, zero for the first month.
func (g *Generator) KPIs(daily []models.DailyRow, labs []models.LabsRow, fitness []models.FitnessRow, chats []models.ChatRow) []models.KPIRow {
	byMonth := map[string][]models.DailyRow{}
	var months []string
	for _, d := range daily {
		m := monthKey(d.Date)
		if _, ok := byMonth[m]; !ok {
			months = append(months, m)
		}
		byMonth[m] = append(byMonth[m], d)
	}
	sort.Strings(months)

	teamMsgs := map[string]int{}
	for _, c := range chats {
		if c.Sender != "member" {
			teamMsgs[monthKey(c.Timestamp)]++
		}
	}

	vo2Mean := map[string][]float64{}
	for _, f := range fitness {
		m := monthKey(f.Date)
		vo2Mean[m] = append(vo2Mean[m], f.VO2MaxEst)
	}

	var rows []models.KPIRow
	prevLDL, prevVO2 := 0.0, 0.0
	for i, m := range months {
		days := byMonth[m]

		var adh, sleep, stress []float64
		sessions := 0
		for _, d := range days {
			adh = append(adh, d.Adherence)
			sleep = append(sleep, d.SleepHours)
			stress = append(stress, float64(d.StressScore))
			if d.ActiveMinutes > 35 {
				sessions++
			}
		}

		weightChange := 0.0
		if n := len(days); n >= 2 {
			weightChange = days[n-1].WeightKg - days[n-2].WeightKg
		}

		// Forward-fill: most recent lab on or before month end carries over.
		monthEnd := days[len(days)-1].Date
		ldl := prevLDL
		for _, l := range labs {
			if !l.Date.After(monthEnd) {
				ldl = l.LDL
			}
		}
		vo2 := prevVO2
		if vals, ok := vo2Mean[m]; ok {
			vo2 = mean(vals)
		}

		ldlChange, vo2Change := 0.0, 0.0
		if i > 0 {
			ldlChange = ldl - prevLDL
			vo2Change = vo2 - prevVO2
		}
		prevLDL, prevVO2 = ldl, vo2

		rows = append(rows, models.KPIRow{
			Month:             m,
			AdherenceAvg:      round2(mean(adh)),
			SessionsTotal:     sessions,
			ConsultsAttended:  teamMsgs[m],
			ConsultsMissed:    0,
			WeightChangeKg:    round1(weightChange),
			SleepAvg:          round1(mean(sleep)),
			StressAvg:         round1(mean(stress)),
			LDLChange:         round1(ldlChange),
			VO2MaxChange:      round1(vo2Change),
			RationaleCoverage: 90,
		})
	}
	return rows
}
