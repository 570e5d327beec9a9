package synth

import (
	"fmt"
	"sort"
	"time"

	"github.com/elyxlabs/careloop/internal/models"
)

// chatZone is the member's local zone; chat timestamps are emitted with its
// fixed offset so runs are reproducible regardless of the host tz database.
var chatZone = time.FixedZone("+08", 8*3600)

// chatMinutes are the minute marks ambient messages land on.
var chatMinutes = []int{0, 5, 10, 15, 20, 30, 45}

// memberTemplates are the rotating ambient member messages. Placeholders are
// filled per template: adherence percent, sleep figure, or a topic.
var memberTemplates = []string{
	"Quick check-in: I held about %d%% adherence this week. Anything I should change?",
	"Slept around %.1f hours last night. Is that enough for the current plan?",
	"Feeling a bit flat today. Should I still do the %s session?",
	"Travel has been rough on my routine. Any tips for %s while on the road?",
	"Can we review my %s numbers at the next check-in?",
}

var chatTopics = []string{"strength", "cardio", "nutrition", "recovery"}

var teamTemplates = map[string][]string{
	"coach": {
		"Good signal overall. Keep the easy days easy and protect your sleep window.",
		"Noted. Let's keep intensity moderate this week and reassess on Sunday.",
	},
	"nutritionist": {
		"Protein first at each meal, and watch the late-night snacking during travel.",
		"Let's hold the current deficit; your trend is moving the right way.",
	},
	"concierge": {
		"Logged, thank you. I'll line everything up and confirm your slots shortly.",
		"On it. You'll have the updated schedule in your inbox today.",
	},
}

// ownerRole maps an intervention owner to the persona label used in chat.
func ownerRole(owner string) string {
	switch owner {
	case "coach":
		return "Coach"
	case "nutritionist":
		return "Nutritionist"
	case "physician", "doctor":
		return "Physician"
	case "concierge":
		return "Concierge"
	default:
		return owner
	}
}

// Chats synthesizes the transcript: Poisson ambient member traffic with
// probabilistic team replies, plus one same-day announcement per
// intervention. Ambient messages link to an intervention when one exists
// within a day of the message date. Output is sorted by timestamp (stable).
func (g *Generator) Chats(interventions []models.InterventionRow) []models.ChatRow {
	start := g.profile.Start()
	end := g.profile.End()

	var rows []models.ChatRow
	for w := 0; ; w++ {
		weekStart := start.AddDate(0, 0, 7*w)
		if weekStart.After(end) {
			break
		}

		k := g.rng.Poisson(5)
		if k > 12 {
			k = 12
		}
		for i := 0; i < k; i++ {
			day := weekStart.AddDate(0, 0, g.rng.IntBetween(0, 6))
			hour := g.rng.IntBetween(8, 21)
			minute := chatMinutes[g.rng.IntN(len(chatMinutes))]
			ts := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, chatZone)

			text := g.fillMemberTemplate(g.rng.IntN(len(memberTemplates)))
			linked := linkedIntervention(interventions, day)
			rows = append(rows, models.ChatRow{
				Timestamp:            ts,
				Sender:               "member",
				Role:                 "member",
				Message:              text,
				Tags:                 "member-initiated",
				LinkedInterventionID: linked,
			})

			if g.rng.Bernoulli(0.6) {
				role := "concierge"
				switch draw := g.rng.Float64(); {
				case draw < 0.75:
					role = "coach"
				case draw < 0.9:
					role = "nutritionist"
				}
				pool := teamTemplates[role]
				reply := pool[g.rng.IntN(len(pool))]
				delay := time.Duration(g.rng.IntBetween(1, 6)) * time.Hour
				rows = append(rows, models.ChatRow{
					Timestamp:            ts.Add(delay),
					Sender:               "elyx",
					Role:                 role,
					Message:              reply,
					Tags:                 "reply;" + role,
					LinkedInterventionID: linked,
				})
			}
		}
	}

	for _, iv := range interventions {
		ts := time.Date(iv.Date.Year(), iv.Date.Month(), iv.Date.Day(), 10, 0, 0, 0, chatZone)
		tags := "intervention"
		if iv.RuleID == RuleLipid {
			tags = "intervention;labs"
		}
		rows = append(rows, models.ChatRow{
			Timestamp: ts,
			Sender:    iv.Owner,
			Role:      ownerRole(iv.Owner),
			Message: fmt.Sprintf("Triggered %s due to %s=%.1f. Action: %s. Follow-up: %s",
				iv.RuleID, iv.TriggerMetric, iv.TriggerValue, iv.Action,
				iv.FollowUpDate.Format(models.DateLayout)),
			Tags:                 tags,
			LinkedInterventionID: iv.RuleID,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
	return rows
}

// fillMemberTemplate renders one ambient member message. Fill draws depend on
// the template: the sleep figure takes one uniform draw, topics one index.
func (g *Generator) fillMemberTemplate(idx int) string {
	switch idx {
	case 0:
		return fmt.Sprintf(memberTemplates[0], int(100*g.profile.Adherence.Base))
	case 1:
		figure := round1(g.profile.Baselines.SleepHours + g.rng.Uniform(-0.8, 0.8))
		return fmt.Sprintf(memberTemplates[1], figure)
	default:
		topic := chatTopics[g.rng.IntN(len(chatTopics))]
		return fmt.Sprintf(memberTemplates[idx], topic)
	}
}

// linkedIntervention returns the rule id of the first intervention within one
// day of the given date, or "".
func linkedIntervention(interventions []models.InterventionRow, day time.Time) string {
	for _, iv := range interventions {
		diff := day.Sub(iv.Date)
		if diff < 0 {
			diff = -diff
		}
		if diff <= 24*time.Hour {
			return iv.RuleID
		}
	}
	return ""
}
