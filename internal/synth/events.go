package synth

import (
	"sort"

	"github.com/elyxlabs/careloop/internal/models"
)

// Events walks the window in 7-day strides and emits the travel and illness
// timeline. Per week the draw order is fixed: travel day intensities in date
// order, then the illness gate, then illness length, offset, and per-day
// intensities. Blocks may overlap; days past the end date are dropped.
func (g *Generator) Events() []models.EventRow {
	start := g.profile.Start()
	end := g.profile.End()
	freq := g.profile.Cadence.Frequencies

	var rows []models.EventRow
	for w := 0; ; w++ {
		weekStart := start.AddDate(0, 0, 7*w)
		if weekStart.After(end) {
			break
		}

		if n := freq.TravelEveryNWeeks; n > 0 && w > 0 && w%n == 0 {
			for d := 0; d < 7; d++ {
				day := weekStart.AddDate(0, 0, d)
				if day.After(end) {
					break
				}
				rows = append(rows, models.EventRow{
					Date:      day,
					Type:      models.EventTravel,
					Intensity: g.rng.IntBetween(1, 3),
					Notes:     "Work travel",
				})
			}
		}

		if g.rng.Bernoulli(freq.IllnessProbabilityWeekly) {
			length := g.rng.IntBetween(3, 5)
			offset := g.rng.IntBetween(0, 6)
			for d := 0; d < length; d++ {
				day := weekStart.AddDate(0, 0, offset+d)
				if day.After(end) {
					break
				}
				rows = append(rows, models.EventRow{
					Date:      day,
					Type:      models.EventIllness,
					Intensity: g.rng.IntBetween(1, 2),
					Notes:     "Viral symptoms",
				})
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows
}
