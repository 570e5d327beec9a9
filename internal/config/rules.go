package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range is a [lo, hi] pair sampled uniformly by the generators.
// YAML shape: a two-element sequence, e.g. [0.5, 1.5].
type Range [2]float64

// Lo returns the lower bound.
func (r Range) Lo() float64 { return r[0] }

// Hi returns the upper bound.
func (r Range) Hi() float64 { return r[1] }

// Rules carries every numeric knob of the simulators, grouped by domain.
type Rules struct {
	Adherence       AdherenceRules    `yaml:"adherence"`
	Sleep           SleepRules        `yaml:"sleep"`
	Weight          WeightRules       `yaml:"weight"`
	RHR             RHRRules          `yaml:"rhr"`
	HRV             HRVRules          `yaml:"hrv"`
	GlycemicMonthly GlycemicRules     `yaml:"glycemic_monthly"`
	LipidsMonthly   LipidsRules       `yaml:"lipids_monthly"`
	Inflammation    InflammationRules `yaml:"inflammation"`
	Fitness         FitnessRules      `yaml:"fitness"`
	BodyCompMonthly BodyCompRules     `yaml:"body_comp_monthly"`
	Interventions   InterventionRules `yaml:"interventions"`
}

// AdherenceRules shapes the daily adherence walk.
type AdherenceRules struct {
	TravelPenaltyPerDay  float64 `yaml:"travel_penalty_per_day"`
	IllnessPenaltyPerDay float64 `yaml:"illness_penalty_per_day"`
	NoiseStd             float64 `yaml:"noise_std"`
}

// SleepRules shapes nightly sleep hours.
type SleepRules struct {
	Base       float64 `yaml:"base"`
	TravelDrop Range   `yaml:"travel_drop"`
	NoiseStd   float64 `yaml:"noise_std"`
}

// WeightRules shapes the weight walk, including the plateau behavior.
type WeightRules struct {
	WeeklyLossIfHighAdherence float64 `yaml:"weekly_loss_if_high_adherence"`
	PlateauAfterDays          int     `yaml:"plateau_after_days"`
	PlateauWeeklyLoss         float64 `yaml:"plateau_weekly_loss"`
	NoiseStd                  float64 `yaml:"noise_std"`
	TravelWaterGain           float64 `yaml:"travel_water_gain"`
}

// RHRRules shapes resting heart rate.
type RHRRules struct {
	NoiseStd            float64 `yaml:"noise_std"`
	TravelBump          Range   `yaml:"travel_bump"`
	IllnessBump         Range   `yaml:"illness_bump"`
	WeeklyDropIfCardio3 float64 `yaml:"weekly_drop_if_cardio3"`
}

// HRVRules shapes heart rate variability.
type HRVRules struct {
	NoiseStd              float64 `yaml:"noise_std"`
	TravelDrop            Range   `yaml:"travel_drop"`
	IllnessDrop           Range   `yaml:"illness_drop"`
	WeeklyGainIfGoodSleep Range   `yaml:"weekly_gain_if_good_sleep"`
}

// GlycemicRules shapes the quarterly glucose panel.
type GlycemicRules struct {
	FastingDropIfGood Range   `yaml:"fasting_drop_if_good"`
	OGTT2hDropIfGood  Range   `yaml:"ogtt2h_drop_if_good"`
	NoiseStd          float64 `yaml:"noise_std"`
}

// LipidsRules shapes the quarterly lipid panel.
type LipidsRules struct {
	LDLDropIfGood Range   `yaml:"ldl_drop_if_good"`
	HDLGainIfGood Range   `yaml:"hdl_gain_if_good"`
	TGDropIfGood  Range   `yaml:"tg_drop_if_good"`
	NoiseStd      float64 `yaml:"noise_std"`
}

// InflammationRules shapes CRP.
type InflammationRules struct {
	NoiseStd       float64 `yaml:"noise_std"`
	MeanRevertRate float64 `yaml:"mean_revert_rate"`
}

// FitnessRules shapes the weekly fitness assessments.
type FitnessRules struct {
	VO2WeeklyGainIfCardio3    Range   `yaml:"vo2_weekly_gain_if_cardio3"`
	VO2WeeklyLossIfLow        float64 `yaml:"vo2_weekly_loss_if_low"`
	GripWeeklyGainIfStrength2 Range   `yaml:"grip_weekly_gain_if_strength2"`
	FMSGainPer4wIfMobility2   float64 `yaml:"fms_gain_per_4w_if_mobility2"`
	SpirometryMonthlyGain     Range   `yaml:"spirometry_monthly_gain"`
}

// BodyCompRules shapes the 4-weekly body-composition drift.
type BodyCompRules struct {
	BodyfatDrop  Range   `yaml:"bodyfat_drop"`
	LeanMassGain float64 `yaml:"lean_mass_gain"`
}

// InterventionRules holds the trigger thresholds for CV-01 and LIP-02.
type InterventionRules struct {
	RHR7dAboveBaseline float64 `yaml:"rhr_7d_above_baseline"`
	HRVDropPct         float64 `yaml:"hrv_drop_pct"`
	LDLThreshold       float64 `yaml:"ldl_threshold"`
}

// DefaultRules returns the rule set the demo dataset is generated with.
func DefaultRules() *Rules {
	return &Rules{
		Adherence: AdherenceRules{
			TravelPenaltyPerDay:  0.12,
			IllnessPenaltyPerDay: 0.18,
			NoiseStd:             0.06,
		},
		Sleep: SleepRules{
			Base:       6.5,
			TravelDrop: Range{0.4, 1.2},
			NoiseStd:   0.5,
		},
		Weight: WeightRules{
			WeeklyLossIfHighAdherence: 0.5,
			PlateauAfterDays:          21,
			PlateauWeeklyLoss:         0.15,
			NoiseStd:                  0.35,
			TravelWaterGain:           0.6,
		},
		RHR: RHRRules{
			NoiseStd:            1.2,
			TravelBump:          Range{1, 4},
			IllnessBump:         Range{3, 8},
			WeeklyDropIfCardio3: 0.7,
		},
		HRV: HRVRules{
			NoiseStd:              2.0,
			TravelDrop:            Range{2, 6},
			IllnessDrop:           Range{4, 10},
			WeeklyGainIfGoodSleep: Range{0.5, 1.5},
		},
		GlycemicMonthly: GlycemicRules{
			FastingDropIfGood: Range{1.5, 3.5},
			OGTT2hDropIfGood:  Range{3, 7},
			NoiseStd:          2.5,
		},
		LipidsMonthly: LipidsRules{
			LDLDropIfGood: Range{1.5, 3.0},
			HDLGainIfGood: Range{0.3, 0.8},
			TGDropIfGood:  Range{2, 5},
			NoiseStd:      4.0,
		},
		Inflammation: InflammationRules{
			NoiseStd:       0.3,
			MeanRevertRate: 0.5,
		},
		Fitness: FitnessRules{
			VO2WeeklyGainIfCardio3:    Range{0.10, 0.25},
			VO2WeeklyLossIfLow:        0.05,
			GripWeeklyGainIfStrength2: Range{0.1, 0.3},
			FMSGainPer4wIfMobility2:   1,
			SpirometryMonthlyGain:     Range{0.01, 0.03},
		},
		BodyCompMonthly: BodyCompRules{
			BodyfatDrop:  Range{0.3, 0.7},
			LeanMassGain: 0.2,
		},
		Interventions: InterventionRules{
			RHR7dAboveBaseline: 5,
			HRVDropPct:         0.15,
			LDLThreshold:       130,
		},
	}
}

// LoadRules loads simulation rules from a YAML file over the defaults.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	r := DefaultRules()
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules %s: %w", path, err)
	}
	return r, nil
}

// Validate checks the rule ranges are well-formed.
func (r *Rules) Validate() error {
	ranges := map[string]Range{
		"sleep.travel_drop":                     r.Sleep.TravelDrop,
		"rhr.travel_bump":                       r.RHR.TravelBump,
		"rhr.illness_bump":                      r.RHR.IllnessBump,
		"hrv.travel_drop":                       r.HRV.TravelDrop,
		"hrv.illness_drop":                      r.HRV.IllnessDrop,
		"hrv.weekly_gain_if_good_sleep":         r.HRV.WeeklyGainIfGoodSleep,
		"glycemic_monthly.fasting_drop_if_good": r.GlycemicMonthly.FastingDropIfGood,
		"glycemic_monthly.ogtt2h_drop_if_good":  r.GlycemicMonthly.OGTT2hDropIfGood,
		"lipids_monthly.ldl_drop_if_good":       r.LipidsMonthly.LDLDropIfGood,
		"lipids_monthly.hdl_gain_if_good":       r.LipidsMonthly.HDLGainIfGood,
		"lipids_monthly.tg_drop_if_good":        r.LipidsMonthly.TGDropIfGood,
		"fitness.vo2_weekly_gain_if_cardio3":    r.Fitness.VO2WeeklyGainIfCardio3,
		"fitness.grip_weekly_gain_if_strength2": r.Fitness.GripWeeklyGainIfStrength2,
		"fitness.spirometry_monthly_gain":       r.Fitness.SpirometryMonthlyGain,
		"body_comp_monthly.bodyfat_drop":        r.BodyCompMonthly.BodyfatDrop,
	}
	for name, rg := range ranges {
		if rg.Lo() > rg.Hi() {
			return fmt.Errorf("%s: lo %.3f above hi %.3f", name, rg.Lo(), rg.Hi())
		}
	}
	if r.Weight.PlateauAfterDays < 0 {
		return fmt.Errorf("weight.plateau_after_days must be non-negative, got %d", r.Weight.PlateauAfterDays)
	}
	if r.Interventions.HRVDropPct <= 0 {
		return fmt.Errorf("interventions.hrv_drop_pct must be positive, got %f", r.Interventions.HRVDropPct)
	}
	return nil
}
