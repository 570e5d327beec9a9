package synth

import (
	"github.com/elyxlabs/careloop/internal/models"
)

// Weekly rolls daily adherence and event-day counts up into week rows.
func (g *Generator) Weekly(daily []models.DailyRow, events []models.EventRow) []models.WeeklyRow {
	travel := map[string]bool{}
	illness := map[string]bool{}
	for _, e := range events {
		switch e.Type {
		case models.EventTravel:
			travel[dateKey(e.Date)] = true
		case models.EventIllness:
			illness[dateKey(e.Date)] = true
		}
	}

	start := g.profile.Start()
	var rows []models.WeeklyRow
	for i := 0; i < len(daily); i += 7 {
		weekStart := start.AddDate(0, 0, i)
		to := i + 7
		if to > len(daily) {
			to = len(daily)
		}

		var adh []float64
		td, id := 0, 0
		for _, d := range daily[i:to] {
			adh = append(adh, d.Adherence)
			if travel[dateKey(d.Date)] {
				td++
			}
			if illness[dateKey(d.Date)] {
				id++
			}
		}
		rows = append(rows, models.WeeklyRow{
			WeekStart:    weekStart,
			AdherenceAvg: mean(adh),
			TravelDays:   td,
			IllnessDays:  id,
		})
	}
	return rows
}
