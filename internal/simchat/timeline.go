// Package simchat replays a member's day-to-day conversation with the care
// team: a seeded wall clock advances through business hours while simulated
// member messages are answered by the live QA service, producing a
// conversational trace alongside the synthesized dataset.
package simchat

import (
	"time"

	"github.com/elyxlabs/careloop/internal/synth"
)

var simZone = time.FixedZone("+08", 8*3600)

const (
	businessOpen  = 8  // first message hour
	businessClose = 19 // last hour a message may land in
)

// Timeline is the simulator's wall clock. Each Now call advances the cursor
// by a random 15-120 minutes (plus seconds jitter) and snaps past-hours
// timestamps to the next morning. Draws come from the simulator's single
// seeded RNG, so a run is reproducible.
type Timeline struct {
	current  time.Time
	dayCount int
	rng      *synth.RNG
}

// NewTimeline starts the clock at the given date, 08:00 member-local time.
func NewTimeline(start time.Time, rng *synth.RNG) *Timeline {
	return &Timeline{
		current: time.Date(start.Year(), start.Month(), start.Day(), businessOpen, 0, 0, 0, simZone),
		rng:     rng,
	}
}

// Now advances the cursor and returns the new timestamp. Outside business
// hours the cursor wraps to the next morning between 08:00 and 10:59.
func (t *Timeline) Now() time.Time {
	t.current = t.current.Add(
		time.Duration(t.rng.IntBetween(15, 120))*time.Minute +
			time.Duration(t.rng.IntBetween(0, 59))*time.Second,
	)
	if t.current.Hour() < businessOpen || t.current.Hour() > businessClose {
		days := 0
		if t.current.Hour() > businessClose {
			days = 1
		}
		next := t.current.AddDate(0, 0, days)
		t.current = time.Date(next.Year(), next.Month(), next.Day(),
			t.rng.IntBetween(businessOpen, 10), t.rng.IntBetween(0, 59), 0, 0, simZone)
	}
	return t.current
}

// NextDay moves the cursor to 08:00 the following day.
func (t *Timeline) NextDay() time.Time {
	next := t.current.AddDate(0, 0, 1)
	t.current = time.Date(next.Year(), next.Month(), next.Day(), businessOpen, 0, 0, 0, simZone)
	t.dayCount++
	return t.current
}

// Date returns the cursor's calendar date at midnight member-local time.
func (t *Timeline) Date() time.Time {
	return time.Date(t.current.Year(), t.current.Month(), t.current.Day(), 0, 0, 0, 0, simZone)
}

// Week returns the 1-based week number since the start of the run.
func (t *Timeline) Week() int { return t.dayCount/7 + 1 }
