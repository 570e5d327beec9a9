package synth

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/elyxlabs/careloop/internal/config"
	"github.com/elyxlabs/careloop/internal/models"
)

func testGenerator(t *testing.T, mutate func(*config.Profile, *config.Rules)) *Generator {
	t.Helper()
	profile := config.DefaultProfile()
	rules := config.DefaultRules()
	if mutate != nil {
		mutate(profile, rules)
	}
	if err := profile.Validate(); err != nil {
		t.Fatalf("profile invalid: %v", err)
	}
	if err := rules.Validate(); err != nil {
		t.Fatalf("rules invalid: %v", err)
	}
	return NewGenerator(profile, rules, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestRunDeterministic(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	for _, dir := range []string{dirA, dirB} {
		g := testGenerator(t, nil)
		if _, err := g.Run(dir); err != nil {
			t.Fatalf("Run(%s): %v", dir, err)
		}
	}

	entries, err := os.ReadDir(dirA)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 10 {
		t.Fatalf("got %d output files, want 10", len(entries))
	}
	for _, e := range entries {
		a, err := os.ReadFile(filepath.Join(dirA, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		if string(a) != string(b) {
			t.Errorf("%s differs between identical runs", e.Name())
		}
	}
}

func TestRunCounts(t *testing.T) {
	g := testGenerator(t, nil)
	res, err := g.Run(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// 2025-01-01 through 2025-09-01 inclusive.
	if got, want := res.Daily, 244; got != want {
		t.Errorf("daily rows = %d, want %d", got, want)
	}
	if got, want := res.Labs, 3; got != want {
		t.Errorf("lab panels = %d, want %d", got, want)
	}
	if got, want := res.KPIs, 9; got != want {
		t.Errorf("kpi months = %d, want %d", got, want)
	}
	if got, want := res.Weekly, 35; got != want {
		t.Errorf("weekly rows = %d, want %d", got, want)
	}
}

func TestEventsTravelCadence(t *testing.T) {
	g := testGenerator(t, nil)
	events := g.Events()

	travel := 0
	for _, e := range events {
		if e.Type == models.EventTravel {
			travel++
			if e.Intensity < 1 || e.Intensity > 3 {
				t.Errorf("travel intensity %d on %s out of range", e.Intensity, dateKey(e.Date))
			}
		}
	}
	// every_n_weeks=4 over a 35-week window: weeks 4,8,...,32, 7 days each.
	if got, want := travel, 56; got != want {
		t.Errorf("travel days = %d, want %d", got, want)
	}
}

func TestEventsSortedAndBounded(t *testing.T) {
	g := testGenerator(t, nil)
	events := g.Events()
	start := g.profile.Start()
	end := g.profile.End()

	for i, e := range events {
		if e.Date.Before(start) || e.Date.After(end) {
			t.Errorf("event on %s outside window", dateKey(e.Date))
		}
		if i > 0 && e.Date.Before(events[i-1].Date) {
			t.Errorf("events out of order at index %d", i)
		}
	}
}

func TestDailyBounds(t *testing.T) {
	g := testGenerator(t, nil)
	daily := g.Daily(g.Events())

	for _, d := range daily {
		if d.Adherence < 0 || d.Adherence > 1 {
			t.Errorf("%s: adherence %.3f out of [0,1]", dateKey(d.Date), d.Adherence)
		}
		if d.WeightKg < g.profile.Bounds.MinWeightKg || d.WeightKg > g.profile.Bounds.MaxWeightKg {
			t.Errorf("%s: weight %.2f out of bounds", dateKey(d.Date), d.WeightKg)
		}
		if d.RHRBpm < 40 || d.RHRBpm > 120 {
			t.Errorf("%s: rhr %d out of [40,120]", dateKey(d.Date), d.RHRBpm)
		}
		if d.HRVMs < 10 || d.HRVMs > 200 {
			t.Errorf("%s: hrv %.1f out of [10,200]", dateKey(d.Date), d.HRVMs)
		}
		if d.SleepHours < 4.5 || d.SleepHours > 8.5 {
			t.Errorf("%s: sleep %.2f out of [4.5,8.5]", dateKey(d.Date), d.SleepHours)
		}
		if d.SleepQuality < 1 || d.SleepQuality > 5 {
			t.Errorf("%s: sleep quality %d out of [1,5]", dateKey(d.Date), d.SleepQuality)
		}
		if d.StressScore < 1 || d.StressScore > 5 {
			t.Errorf("%s: stress %d out of [1,5]", dateKey(d.Date), d.StressScore)
		}
		if d.Soreness < 0 || d.Soreness > 10 {
			t.Errorf("%s: soreness %d out of [0,10]", dateKey(d.Date), d.Soreness)
		}
		if d.ActiveMinutes < 0 {
			t.Errorf("%s: negative active minutes %d", dateKey(d.Date), d.ActiveMinutes)
		}
	}
}

func TestCardioDriftNeverFiresEarly(t *testing.T) {
	// Force firing by pushing RHR far above baseline.
	g := testGenerator(t, func(p *config.Profile, r *config.Rules) {
		r.Interventions.RHR7dAboveBaseline = -100
	})
	daily := g.Daily(g.Events())
	rows := g.Interventions(daily, nil)

	if len(rows) == 0 {
		t.Fatal("expected CV-01 firings with a -100 threshold")
	}
	earliest := g.profile.Start().AddDate(0, 0, 6)
	for _, iv := range rows {
		if iv.RuleID != RuleCardioDrift {
			continue
		}
		if iv.Date.Before(earliest) {
			t.Errorf("CV-01 fired on %s, before the 7-day window filled", dateKey(iv.Date))
		}
		if iv.Owner != "coach" {
			t.Errorf("CV-01 owner = %q, want coach", iv.Owner)
		}
		if got, want := iv.FollowUpDate, iv.Date.AddDate(0, 0, 7); !got.Equal(want) {
			t.Errorf("CV-01 follow-up = %s, want %s", dateKey(got), dateKey(want))
		}
	}
}

func TestLipidRuleFires(t *testing.T) {
	g := testGenerator(t, func(p *config.Profile, r *config.Rules) {
		p.Baselines.LDL = 180
	})
	daily := g.Daily(g.Events())
	labs := g.Labs(daily)
	rows := g.Interventions(daily, labs)

	var lipid []models.InterventionRow
	for _, iv := range rows {
		if iv.RuleID == RuleLipid {
			lipid = append(lipid, iv)
		}
	}
	if len(lipid) == 0 {
		t.Fatal("expected LIP-02 firings with LDL baseline 180")
	}
	threshold := g.rules.Interventions.LDLThreshold
	for _, iv := range lipid {
		if iv.TriggerMetric != "ldl_mgdl" {
			t.Errorf("trigger metric = %q, want ldl_mgdl", iv.TriggerMetric)
		}
		if iv.TriggerValue <= threshold {
			t.Errorf("trigger value %.1f not above threshold %.1f", iv.TriggerValue, threshold)
		}
		if iv.Owner != "nutritionist" {
			t.Errorf("LIP-02 owner = %q, want nutritionist", iv.Owner)
		}
		if got, want := iv.FollowUpDate, iv.Date.AddDate(0, 0, 84); !got.Equal(want) {
			t.Errorf("LIP-02 follow-up = %s, want %s", dateKey(got), dateKey(want))
		}
	}
}

func TestChatsAnnouncementsAndLinks(t *testing.T) {
	g := testGenerator(t, func(p *config.Profile, r *config.Rules) {
		p.Baselines.LDL = 180
	})
	daily := g.Daily(g.Events())
	labs := g.Labs(daily)
	interventions := g.Interventions(daily, labs)
	chats := g.Chats(interventions)

	byRule := map[string][]models.InterventionRow{}
	for _, iv := range interventions {
		byRule[iv.RuleID] = append(byRule[iv.RuleID], iv)
	}

	announcements := 0
	for i, c := range chats {
		if i > 0 && c.Timestamp.Before(chats[i-1].Timestamp) {
			t.Errorf("chats out of order at index %d", i)
		}
		if strings.HasPrefix(c.Tags, "intervention") {
			announcements++
			if !strings.HasPrefix(c.Message, "Triggered ") {
				t.Errorf("announcement message %q missing prefix", c.Message)
			}
			if c.Timestamp.Hour() != 10 {
				t.Errorf("announcement at hour %d, want 10", c.Timestamp.Hour())
			}
		}
		if c.LinkedInterventionID == "" {
			continue
		}
		// Every link must have a matching intervention near the message date.
		// Replies delayed past midnight can land a day after the member
		// message they echo, so allow two days.
		day := time.Date(c.Timestamp.Year(), c.Timestamp.Month(), c.Timestamp.Day(), 0, 0, 0, 0, time.UTC)
		found := false
		for _, iv := range byRule[c.LinkedInterventionID] {
			diff := day.Sub(iv.Date)
			if diff < 0 {
				diff = -diff
			}
			if diff <= 48*time.Hour {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("chat at %s links %q with no intervention within a day",
				c.Timestamp.Format(models.TimestampLayout), c.LinkedInterventionID)
		}
	}
	if announcements != len(interventions) {
		t.Errorf("announcements = %d, want one per intervention (%d)", announcements, len(interventions))
	}

	// LIP announcements carry the labs tag.
	for _, c := range chats {
		if c.LinkedInterventionID == RuleLipid && strings.HasPrefix(c.Tags, "intervention") {
			if c.Tags != "intervention;labs" {
				t.Errorf("LIP announcement tags = %q, want intervention;labs", c.Tags)
			}
		}
	}
}

func TestAnnouncementMessage(t *testing.T) {
	g := testGenerator(t, nil)
	date := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	iv := models.InterventionRow{
		Date:          date,
		RuleID:        RuleCardioDrift,
		TriggerMetric: "rhr_7d_avg",
		TriggerValue:  71.2,
		Action:        "deload week; sleep hygiene; -20% intensity",
		Owner:         "coach",
		FollowUpDate:  date.AddDate(0, 0, 7),
	}
	chats := g.Chats([]models.InterventionRow{iv})

	want := "Triggered CV-01 due to rhr_7d_avg=71.2. Action: deload week; sleep hygiene; -20% intensity. Follow-up: 2025-02-17"
	found := false
	for _, c := range chats {
		if c.Message == want {
			found = true
			if c.Role != "Coach" {
				t.Errorf("announcement role = %q, want Coach", c.Role)
			}
			if c.Sender != "coach" {
				t.Errorf("announcement sender = %q, want coach", c.Sender)
			}
		}
	}
	if !found {
		t.Errorf("announcement %q not found in transcript", want)
	}
}

func TestKPIRollup(t *testing.T) {
	g := testGenerator(t, nil)

	day := func(s string) time.Time {
		d, err := time.Parse(models.DateLayout, s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	daily := []models.DailyRow{
		{Date: day("2025-01-01"), Adherence: 0.5, SleepHours: 7, StressScore: 3, ActiveMinutes: 40, WeightKg: 75},
		{Date: day("2025-01-02"), Adherence: 0.7, SleepHours: 6, StressScore: 3, ActiveMinutes: 20, WeightKg: 74.5},
		{Date: day("2025-02-01"), Adherence: 0.6, SleepHours: 7, StressScore: 2, ActiveMinutes: 50, WeightKg: 74},
	}
	labs := []models.LabsRow{
		{Date: day("2025-01-01"), LDL: 150},
		{Date: day("2025-02-01"), LDL: 140},
	}
	fitness := []models.FitnessRow{
		{Date: day("2025-01-03"), VO2MaxEst: 36},
	}
	chats := []models.ChatRow{
		{Timestamp: day("2025-01-05"), Sender: "member"},
		{Timestamp: day("2025-01-06"), Sender: "elyx"},
		{Timestamp: day("2025-02-02"), Sender: "coach"},
	}

	rows := g.KPIs(daily, labs, fitness, chats)
	if len(rows) != 2 {
		t.Fatalf("got %d kpi rows, want 2", len(rows))
	}

	jan, feb := rows[0], rows[1]
	if jan.Month != "2025-01" || feb.Month != "2025-02" {
		t.Fatalf("months = %s, %s; want 2025-01, 2025-02", jan.Month, feb.Month)
	}
	if got, want := jan.AdherenceAvg, 0.6; got != want {
		t.Errorf("jan adherence = %v, want %v", got, want)
	}
	if got, want := jan.SessionsTotal, 1; got != want {
		t.Errorf("jan sessions = %d, want %d", got, want)
	}
	if got, want := jan.ConsultsAttended, 1; got != want {
		t.Errorf("jan consults = %d, want %d", got, want)
	}
	if got, want := jan.WeightChangeKg, -0.5; got != want {
		t.Errorf("jan weight change = %v, want %v", got, want)
	}
	if jan.LDLChange != 0 || jan.VO2MaxChange != 0 {
		t.Errorf("first month changes = %v/%v, want 0/0", jan.LDLChange, jan.VO2MaxChange)
	}
	if got, want := feb.LDLChange, -10.0; got != want {
		t.Errorf("feb ldl change = %v, want %v", got, want)
	}
	if got, want := feb.VO2MaxChange, 0.0; got != want {
		t.Errorf("feb vo2 change = %v, want %v", got, want)
	}
	if got, want := feb.WeightChangeKg, 0.0; got != want {
		t.Errorf("feb weight change (single row) = %v, want %v", got, want)
	}
	if jan.RationaleCoverage != 90 || feb.RationaleCoverage != 90 {
		t.Errorf("rationale coverage = %d/%d, want 90", jan.RationaleCoverage, feb.RationaleCoverage)
	}
}

func TestWeeklyRollup(t *testing.T) {
	g := testGenerator(t, nil)
	events := g.Events()
	daily := g.Daily(events)
	weekly := g.Weekly(daily, events)

	if len(weekly) != 35 {
		t.Fatalf("got %d weekly rows, want 35", len(weekly))
	}
	totalTravel := 0
	for _, w := range weekly {
		if w.AdherenceAvg < 0 || w.AdherenceAvg > 1 {
			t.Errorf("week %s adherence %.3f out of [0,1]", dateKey(w.WeekStart), w.AdherenceAvg)
		}
		totalTravel += w.TravelDays
	}
	if got, want := totalTravel, 56; got != want {
		t.Errorf("total travel days = %d, want %d", got, want)
	}
}

func TestDailyCSVFormat(t *testing.T) {
	g := testGenerator(t, nil)
	dir := t.TempDir()
	if _, err := g.Run(dir); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, FileDaily))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	wantHeader := "date,adherence,steps,active_minutes,weight_kg,rhr_bpm,hrv_ms,sleep_hours,sleep_quality,stress_score,soreness,caloric_balance_kcal"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	if got, want := len(lines)-1, 244; got != want {
		t.Errorf("data rows = %d, want %d", got, want)
	}
	first := strings.Split(lines[1], ",")
	if first[0] != "2025-01-01" {
		t.Errorf("first row date = %q, want 2025-01-01", first[0])
	}
	// adherence is three decimal places, weight two.
	if !strings.Contains(first[1], ".") || len(first[1])-strings.Index(first[1], ".")-1 != 3 {
		t.Errorf("adherence %q not formatted to 3dp", first[1])
	}
	if len(first[4])-strings.Index(first[4], ".")-1 != 2 {
		t.Errorf("weight %q not formatted to 2dp", first[4])
	}
}

func TestProfileCSV(t *testing.T) {
	g := testGenerator(t, nil)
	dir := t.TempDir()
	if _, err := g.Run(dir); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, FileProfile))
	if err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf("member_id,name,age,sex,goals,chronic_condition,residence\n%s,%s,%d,%s,%s,%s,%s\n",
		"m-0001", "Rohan Patel", 46, "M",
		"reduce cardiovascular risk; improve energy", "high blood pressure", "Singapore")
	if string(data) != want {
		t.Errorf("member_profile.csv = %q, want %q", string(data), want)
	}
}
