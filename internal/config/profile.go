// Package config provides YAML configuration loading for careloop: the member
// profile, the simulation rules, and the service settings. Unknown keys are
// ignored so profiles can carry additive annotations without breaking loads.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elyxlabs/careloop/internal/models"
)

// Profile describes the member and the knobs of the synthesis window.
type Profile struct {
	Seed      int64  `yaml:"seed"`
	StartDate string `yaml:"start_date"`
	Months    int    `yaml:"months"`

	Member    Member    `yaml:"member"`
	Baselines Baselines `yaml:"baselines"`
	Bounds    Bounds    `yaml:"bounds"`
	Exercise  Exercise  `yaml:"exercise"`
	Adherence Adherence `yaml:"adherence"`
	Cadence   Cadence   `yaml:"cadence"`

	start time.Time
}

// Member is the identity section of the profile.
type Member struct {
	MemberID         string `yaml:"member_id"`
	Name             string `yaml:"name"`
	Age              int    `yaml:"age"`
	Sex              string `yaml:"sex"`
	Goals            string `yaml:"goals"`
	ChronicCondition string `yaml:"chronic_condition"`
	Residence        string `yaml:"residence"`
}

// Baselines holds the member's starting values for every simulated metric.
type Baselines struct {
	WeightKg   float64 `yaml:"weight_kg"`
	RHR        float64 `yaml:"rhr"`
	HRV        float64 `yaml:"hrv"`
	SleepHours float64 `yaml:"sleep_hours"`

	FastingGlucose float64 `yaml:"fpg_mgdl"`
	OGTT2h         float64 `yaml:"ogtt2h_mgdl"`
	LDL            float64 `yaml:"ldl_mgdl"`
	HDL            float64 `yaml:"hdl_mgdl"`
	Triglycerides  float64 `yaml:"tg_mgdl"`

	VO2Max     float64 `yaml:"vo2max"`
	GripKg     float64 `yaml:"grip_kg"`
	FMS        int     `yaml:"fms"`
	FEV1L      float64 `yaml:"fev1_l"`
	BodyfatPct float64 `yaml:"bodyfat_percent"`
	LeanMassKg float64 `yaml:"lean_mass_kg"`
}

// Bounds clamps the daily weight walk.
type Bounds struct {
	MinWeightKg float64 `yaml:"min_weight_kg"`
	MaxWeightKg float64 `yaml:"max_weight_kg"`
}

// Exercise holds the planned training cadence.
type Exercise struct {
	SessionsPerWeek int `yaml:"sessions_per_week"`
}

// Adherence holds the member's base plan compliance.
type Adherence struct {
	Base float64 `yaml:"base"`
}

// Cadence controls the scheduled parts of the timeline.
type Cadence struct {
	QuarterlyLabsWeeks []int       `yaml:"quarterly_labs_weeks"`
	Frequencies        Frequencies `yaml:"frequencies"`
}

// Frequencies controls the stochastic event cadence.
type Frequencies struct {
	TravelEveryNWeeks        int     `yaml:"travel_every_n_weeks"`
	IllnessProbabilityWeekly float64 `yaml:"illness_probability_weekly"`
}

// DefaultProfile returns the demo member profile: an 8-month window for a
// single member with mid-range baselines.
func DefaultProfile() *Profile {
	return &Profile{
		Seed:      42,
		StartDate: "2025-01-01",
		Months:    8,
		Member: Member{
			MemberID:         "m-0001",
			Name:             "Rohan Patel",
			Age:              46,
			Sex:              "M",
			Goals:            "reduce cardiovascular risk; improve energy",
			ChronicCondition: "high blood pressure",
			Residence:        "Singapore",
		},
		Baselines: Baselines{
			WeightKg:       75,
			RHR:            65,
			HRV:            40,
			SleepHours:     6.5,
			FastingGlucose: 105,
			OGTT2h:         155,
			LDL:            150,
			HDL:            45,
			Triglycerides:  160,
			VO2Max:         36,
			GripKg:         38,
			FMS:            13,
			FEV1L:          3.4,
			BodyfatPct:     24,
			LeanMassKg:     55,
		},
		Bounds: Bounds{
			MinWeightKg: 68,
			MaxWeightKg: 78,
		},
		Exercise:  Exercise{SessionsPerWeek: 4},
		Adherence: Adherence{Base: 0.5},
		Cadence: Cadence{
			QuarterlyLabsWeeks: []int{0, 12, 24},
			Frequencies: Frequencies{
				TravelEveryNWeeks:        4,
				IllnessProbabilityWeekly: 0.1,
			},
		},
	}
}

// LoadProfile loads a profile from a YAML file, applying defaults for any
// omitted sections, then validates it.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return p, nil
}

// Validate checks required fields and parses the start date.
func (p *Profile) Validate() error {
	start, err := time.Parse(models.DateLayout, p.StartDate)
	if err != nil {
		return fmt.Errorf("start_date must be YYYY-MM-DD: %w", err)
	}
	p.start = start

	if p.Months <= 0 {
		return fmt.Errorf("months must be positive, got %d", p.Months)
	}
	if p.Member.MemberID == "" {
		return fmt.Errorf("member.member_id is required")
	}
	if p.Adherence.Base < 0 || p.Adherence.Base > 1 {
		return fmt.Errorf("adherence.base must be in [0,1], got %f", p.Adherence.Base)
	}
	if p.Bounds.MinWeightKg >= p.Bounds.MaxWeightKg {
		return fmt.Errorf("bounds: min_weight_kg %.1f must be below max_weight_kg %.1f",
			p.Bounds.MinWeightKg, p.Bounds.MaxWeightKg)
	}
	if f := p.Cadence.Frequencies; f.TravelEveryNWeeks < 0 {
		return fmt.Errorf("travel_every_n_weeks must be non-negative, got %d", f.TravelEveryNWeeks)
	}
	if pr := p.Cadence.Frequencies.IllnessProbabilityWeekly; pr < 0 || pr > 1 {
		return fmt.Errorf("illness_probability_weekly must be in [0,1], got %f", pr)
	}
	return nil
}

// Start returns the parsed start date. Validate must have succeeded first.
func (p *Profile) Start() time.Time { return p.start }

// End returns the last simulated day: start plus the configured months.
func (p *Profile) End() time.Time { return p.start.AddDate(0, p.Months, 0) }

// LabWeeks returns the sorted, deduplicated quarterly cadence, falling back
// to {0,12,24} (or {4} for short windows) when the configured list is empty.
func (p *Profile) LabWeeks() []int {
	seen := make(map[int]bool)
	var weeks []int
	for _, w := range p.Cadence.QuarterlyLabsWeeks {
		if w >= 0 && !seen[w] {
			seen[w] = true
			weeks = append(weeks, w)
		}
	}
	if len(weeks) == 0 {
		if p.Months >= 6 {
			return []int{0, 12, 24}
		}
		return []int{4}
	}
	for i := 1; i < len(weeks); i++ {
		for j := i; j > 0 && weeks[j] < weeks[j-1]; j-- {
			weeks[j], weeks[j-1] = weeks[j-1], weeks[j]
		}
	}
	return weeks
}

// expandEnvVars expands ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
