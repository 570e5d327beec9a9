package simchat

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/elyxlabs/careloop/internal/models"
	"github.com/elyxlabs/careloop/internal/rag"
	"github.com/elyxlabs/careloop/internal/synth"
)

// Answerer is the slice of the QA surface the simulator needs. Both the
// in-process service and the HTTP client satisfy it.
type Answerer interface {
	Ask(ctx context.Context, question, explicitRole string, since time.Time) (*rag.Answer, error)
}

// Member is the simulated client.
type Member struct {
	Name      string
	Condition string
	Residence string
	Adherence float64
}

// DefaultMember matches the synthesized dataset's subject.
func DefaultMember() Member {
	return Member{
		Name:      "Rohan",
		Condition: "high blood pressure",
		Residence: "Singapore",
		Adherence: 0.5,
	}
}

var memberQuestions = []string{
	"My Garmin shows high stress levels, what should I do?",
	"I've been having trouble sleeping",
	"Can you explain my latest lab results?",
	"What's the best pre-workout meal?",
	"I'll be traveling to Tokyo next week - any tips?",
	"My knee has been hurting after squats",
	"How can I improve my recovery scores?",
	"Is my LDL cholesterol too high?",
	"What supplements would you recommend?",
	"Can we reschedule my appointment?",
}

var spontaneousMessages = []struct {
	role models.Role
	text string
}{
	{models.RoleRachel, "Your movement assessment shows improved mobility!"},
	{models.RoleCarla, "New research on omega-3s might interest you."},
	{models.RoleAdvik, "Your HRV trend is looking better this week."},
	{models.RoleRuby, "Don't forget to log your meals today."},
	{models.RoleDrWarren, "Let me know if you're experiencing any new symptoms."},
}

const rubyGreeting = "Hello! How's your day going so far? Hope you're feeling good and healthy today."

// fallbackAnswer stands in when the QA service fails; the simulator does not
// retry.
const fallbackAnswer = "I'll need to consult with the team about this."

const reminderLeadDays = 3

// scheduledEvent is a team-initiated broadcast pinned to a date.
type scheduledEvent struct {
	date time.Time
	role models.Role
	text string
}

// HistoryRow is one line of the conversational trace.
type HistoryRow struct {
	Timestamp time.Time
	Sender    string
	Message   string
}

// Simulator drives the conversation loop. Not safe for concurrent use; a run
// is single-goroutine like the synthesis pipeline.
type Simulator struct {
	qa       Answerer
	member   Member
	timeline *Timeline
	rng      *synth.RNG
	log      *slog.Logger

	since   time.Time
	events  []scheduledEvent
	history []HistoryRow
	phase   string
}

// NewSimulator seeds a simulator over the given QA surface. The start date
// anchors both the timeline and the retrieval window.
func NewSimulator(qa Answerer, member Member, start time.Time, seed int64, log *slog.Logger) *Simulator {
	rng := synth.NewRNG(seed)
	return &Simulator{
		qa:       qa,
		member:   member,
		timeline: NewTimeline(start, rng),
		rng:      rng,
		log:      log,
		since:    time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, simZone),
		events:   diagnosticSchedule(start),
		phase:    "onboarding",
	}
}

// diagnosticSchedule pins full-diagnostic broadcasts at months 0, 2, and 5
// of the run, plus a reminder three days before each.
func diagnosticSchedule(start time.Time) []scheduledEvent {
	base := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, simZone)
	var events []scheduledEvent
	for _, months := range []int{0, 2, 5} {
		date := base.AddDate(0, months, 0)
		events = append(events,
			scheduledEvent{
				date: date,
				role: models.RoleDrWarren,
				text: "Your full diagnostic panel is scheduled for today. Please fast from midnight.",
			},
			scheduledEvent{
				date: date.AddDate(0, 0, -reminderLeadDays),
				role: models.RoleDrWarren,
				text: fmt.Sprintf("Reminder: your full diagnostic panel is coming up on %s.", date.Format("Jan 2")),
			},
		)
	}
	return events
}

// Run simulates the given number of days and returns the trace.
func (s *Simulator) Run(ctx context.Context, days int) ([]HistoryRow, error) {
	s.log.Info("simulation starting",
		"member", s.member.Name,
		"start", s.timeline.Date().Format(models.DateLayout),
		"days", days,
	)
	for day := 0; day < days; day++ {
		if err := ctx.Err(); err != nil {
			return s.history, err
		}
		s.updatePhase()
		s.simulateDay(ctx)
		if (day+1)%30 == 0 {
			s.log.Info("simulation progress",
				"day", day+1,
				"phase", s.phase,
				"messages", len(s.history),
			)
		}
		s.timeline.NextDay()
	}
	s.log.Info("simulation complete", "messages", len(s.history))
	return s.history, nil
}

// History returns the trace accumulated so far.
func (s *Simulator) History() []HistoryRow { return s.history }

func (s *Simulator) simulateDay(ctx context.Context) {
	// Scheduled broadcasts first, then at most one spontaneous nudge.
	delivered := false
	today := s.timeline.Date()
	for _, ev := range s.events {
		if ev.date.Equal(today) {
			s.deliverTeamMessage(ctx, ev.role, ev.text)
			delivered = true
		}
	}
	if !delivered && s.rng.Bernoulli(0.2) {
		msg := spontaneousMessages[s.rng.IntN(len(spontaneousMessages))]
		s.deliverTeamMessage(ctx, msg.role, msg.text)
	}

	interactions := s.rng.IntBetween(1, 3)
	memberFirst := s.rng.Bernoulli(0.5)
	for i := 0; i < interactions; i++ {
		if memberFirst == (i%2 == 0) {
			s.memberConversation(ctx)
		} else {
			s.teamConversation(ctx, i == 0)
		}
	}
}

// deliverTeamMessage records a team broadcast and, 60% of the time, a member
// reply answered through the QA service.
func (s *Simulator) deliverTeamMessage(ctx context.Context, role models.Role, text string) {
	s.record(role.String(), text)
	if !s.rng.Bernoulli(0.6) {
		return
	}
	question := memberQuestions[s.rng.IntN(len(memberQuestions))]
	s.record(s.member.Name, question)
	s.record(role.String(), s.ask(ctx, question, role.String()))
}

// memberConversation starts with a canned member question routed to a
// responder by keyword, with a 40% follow-up exchange.
func (s *Simulator) memberConversation(ctx context.Context) {
	question := memberQuestions[s.rng.IntN(len(memberQuestions))]
	s.record(s.member.Name, question)

	responder := responderFor(question)
	answer := s.ask(ctx, question, responder)
	if responder == "" {
		responder = models.DefaultRole.String()
	}
	s.record(responder, answer)

	if s.rng.Bernoulli(0.4) {
		followUp := memberQuestions[s.rng.IntN(len(memberQuestions))]
		s.record(s.member.Name, followUp)
		s.record(responder, s.ask(ctx, followUp, responder))
	}
}

// teamConversation opens with Ruby's greeting on the day's first
// conversation; 60% of the time the member responds and gets an answer.
func (s *Simulator) teamConversation(ctx context.Context, first bool) {
	if first {
		s.record(models.RoleRuby.String(), rubyGreeting)
	}
	if !s.rng.Bernoulli(0.6) {
		return
	}
	question := memberQuestions[s.rng.IntN(len(memberQuestions))]
	s.record(s.member.Name, question)
	s.record(models.RoleRuby.String(), s.ask(ctx, question, models.RoleRuby.String()))
}

func (s *Simulator) ask(ctx context.Context, question, role string) string {
	ans, err := s.qa.Ask(ctx, question, role, s.since)
	if err != nil {
		s.log.Warn("qa call failed", "error", err, "question", question)
		return fallbackAnswer
	}
	return ans.Answer
}

func (s *Simulator) record(sender, message string) {
	s.history = append(s.history, HistoryRow{
		Timestamp: s.timeline.Now(),
		Sender:    sender,
		Message:   message,
	})
}

func (s *Simulator) updatePhase() {
	week := s.timeline.Week()
	switch {
	case week <= 1:
		s.phase = "onboarding"
	case week <= 4:
		s.phase = "testing"
	case week <= 8:
		s.phase = "planning"
	default:
		s.phase = "management"
	}
}

// responderFor keyword-maps a member question to the team role that should
// answer it. Empty means defer to the service's own router.
func responderFor(question string) string {
	lower := strings.ToLower(question)
	contains := func(kws ...string) bool {
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		return false
	}
	switch {
	case contains("lab", "test", "result", "medical"):
		return models.RoleDrWarren.String()
	case contains("food", "diet", "meal", "nutrition"):
		return models.RoleCarla.String()
	case contains("exercise", "workout", "pain", "injury"):
		return models.RoleRachel.String()
	case contains("sleep", "recovery", "hrv", "stress"):
		return models.RoleAdvik.String()
	case contains("schedule", "appointment", "travel"):
		return models.RoleRuby.String()
	}
	return ""
}

// WriteHistory appends the trace to a CSV, writing the header only when the
// file is new or empty.
func WriteHistory(path string, rows []HistoryRow) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat history file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write([]string{"timestamp", "sender", "message"}); err != nil {
			return fmt.Errorf("writing history header: %w", err)
		}
	}
	for _, row := range rows {
		rec := []string{row.Timestamp.Format(models.TimestampLayout), row.Sender, row.Message}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing history row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
