package models

import (
	"errors"
	"time"
)

// Layouts for the date and timestamp columns in the generated CSV tables.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04 -0700"
	MonthLayout     = "2006-01"
)

// Sentinel errors shared across the pipeline and the retrieval service.
var (
	ErrRoleNotFound       = errors.New("role not found")
	ErrIndexUnavailable   = errors.New("vector index unavailable")
	ErrMissingSourceFile  = errors.New("missing source file")
	ErrGeneratorExhausted = errors.New("generator exhausted")
)

// Event types emitted by the timeline generator.
const (
	EventTravel  = "travel"
	EventIllness = "illness"
)

// EventRow is one day of a travel or illness block.
type EventRow struct {
	Date      time.Time
	Type      string // EventTravel or EventIllness
	Intensity int
	Notes     string
}

// DailyRow is one calendar day of wearable and adherence metrics.
type DailyRow struct {
	Date           time.Time
	Adherence      float64 // [0,1]
	Steps          int
	ActiveMinutes  int
	WeightKg       float64
	RHRBpm         int
	HRVMs          float64
	SleepHours     float64
	SleepQuality   int // 1..5
	StressScore    int // 1..5
	Soreness       int // 0..10
	CaloricBalance int // kcal
}

// LabsRow is one quarterly lab panel.
type LabsRow struct {
	Date            time.Time
	FastingGlucose  float64 // mg/dL
	OGTT2h          float64 // mg/dL
	FastingInsulin  float64 // uIU/mL
	TotalChol       float64 // mg/dL
	LDL             float64 // mg/dL
	HDL             float64 // mg/dL
	Triglycerides   float64 // mg/dL
	ApoB            float64 // mg/dL
	ApoA1           float64 // mg/dL
	LpA             int     // nmol/L
	CRP             float64 // mg/L
	ESR             int     // mm/hr
	ALT             int     // U/L
	AST             int     // U/L
	Creatinine      float64 // mg/dL
	EGFR            int     // mL/min
	TSH             float64 // uIU/mL
	T3              float64 // ng/dL
	T4              float64 // ug/dL
	Cortisol        float64 // ug/dL
	VitD            float64 // ng/mL
	B12             float64 // pg/mL
	Ferritin        float64 // ng/mL
	Omega3Index     float64 // percent
}

// FitnessRow is one weekly fitness assessment.
type FitnessRow struct {
	Date        time.Time
	VO2MaxEst   float64
	FiveKmMin   float64
	DeadliftKg  int
	SquatKg     int
	GripKg      float64
	FMSScore    int // 0..21
	FEV1L       float64
}

// BodyCompRow is one weekly body-composition measurement.
type BodyCompRow struct {
	Date        time.Time
	BodyfatPct  float64
	LeanMassKg  float64
	BoneTScore  float64
}

// InterventionRow is one rule-triggered action record.
type InterventionRow struct {
	Date          time.Time
	RuleID        string
	TriggerMetric string
	TriggerValue  float64
	Action        string
	Owner         string
	FollowUpDate  time.Time
	Notes         string
}

// ChatRow is one message in the synthesized transcript.
type ChatRow struct {
	Timestamp            time.Time
	Sender               string
	Role                 string
	Message              string
	Tags                 string
	LinkedInterventionID string
}

// KPIRow is one month of rolled-up outcomes.
type KPIRow struct {
	Month             string // YYYY-MM
	AdherenceAvg      float64
	SessionsTotal     int
	ConsultsAttended  int
	ConsultsMissed    int
	WeightChangeKg    float64
	SleepAvg          float64
	StressAvg         float64
	LDLChange         float64
	VO2MaxChange      float64
	RationaleCoverage int // percent
}

// WeeklyRow is one week of adherence and event-day counts.
type WeeklyRow struct {
	WeekStart    time.Time
	AdherenceAvg float64
	TravelDays   int
	IllnessDays  int
}

// Member is the profile snapshot written alongside the dataset.
type Member struct {
	MemberID         string
	Name             string
	Age              int
	Sex              string
	Goals            string
	ChronicCondition string
	Residence        string
}
