package synth

import (
	"math"
	"time"

	"github.com/elyxlabs/careloop/internal/models"
)

// dateKey formats a day for map lookups and document ids.
func dateKey(t time.Time) string { return t.Format(models.DateLayout) }

// monthKey formats a day's calendar month.
func monthKey(t time.Time) string { return t.Format(models.MonthLayout) }

// minDate returns the earlier of two days.
func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// monthsBetween counts whole calendar months from start to d.
func monthsBetween(start, d time.Time) int {
	m := 0
	for !start.AddDate(0, m+1, 0).After(d) {
		m++
	}
	return m
}

// clamp bounds v to [lo,hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampInt bounds v to [lo,hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round1 rounds to one decimal place, half away from zero.
func round1(v float64) float64 { return math.Round(v*10) / 10 }

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// roundInt rounds to the nearest integer, half away from zero.
func roundInt(v float64) int { return int(math.Round(v)) }

// mean averages a float slice; zero for empty input.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
