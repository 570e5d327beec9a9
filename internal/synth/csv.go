package synth

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/elyxlabs/careloop/internal/models"
)

// Output filenames within the dataset directory.
const (
	FileEvents        = "events.csv"
	FileDaily         = "daily.csv"
	FileLabs          = "labs_quarterly.csv"
	FileFitness       = "fitness.csv"
	FileBodyComp      = "body_comp.csv"
	FileInterventions = "interventions.csv"
	FileChats         = "chats.csv"
	FileKPIs          = "kpis_monthly.csv"
	FileWeekly        = "weekly.csv"
	FileProfile       = "member_profile.csv"
)

// f1, f2, f3 format floats at fixed precision so output bytes are stable.
func f1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func f3(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

func itoa(v int) string { return strconv.Itoa(v) }

// writeCSV writes a header plus rows to dir/name.
func writeCSV(dir, name string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s header: %w", name, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing %s row: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", name, err)
	}
	return f.Close()
}

func writeEvents(dir string, rows []models.EventRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{dateKey(r.Date), r.Type, itoa(r.Intensity), r.Notes})
	}
	return writeCSV(dir, FileEvents,
		[]string{"date", "event_type", "intensity", "notes"}, out)
}

func writeDaily(dir string, rows []models.DailyRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			dateKey(r.Date), f3(r.Adherence), itoa(r.Steps), itoa(r.ActiveMinutes),
			f2(r.WeightKg), itoa(r.RHRBpm), f1(r.HRVMs), f2(r.SleepHours),
			itoa(r.SleepQuality), itoa(r.StressScore), itoa(r.Soreness),
			itoa(r.CaloricBalance),
		})
	}
	return writeCSV(dir, FileDaily, []string{
		"date", "adherence", "steps", "active_minutes", "weight_kg", "rhr_bpm",
		"hrv_ms", "sleep_hours", "sleep_quality", "stress_score", "soreness",
		"caloric_balance_kcal",
	}, out)
}

func writeLabs(dir string, rows []models.LabsRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			dateKey(r.Date), f1(r.FastingGlucose), f1(r.OGTT2h), f1(r.FastingInsulin),
			f1(r.TotalChol), f1(r.LDL), f1(r.HDL), f1(r.Triglycerides),
			f1(r.ApoB), f1(r.ApoA1), itoa(r.LpA), f2(r.CRP), itoa(r.ESR),
			itoa(r.ALT), itoa(r.AST), f1(r.Creatinine), itoa(r.EGFR),
			f1(r.TSH), f1(r.T3), f1(r.T4), f1(r.Cortisol),
			f1(r.VitD), f1(r.B12), f1(r.Ferritin), f2(r.Omega3Index),
		})
	}
	return writeCSV(dir, FileLabs, []string{
		"date", "fasting_glucose_mgdl", "ogtt_2h_glucose_mgdl",
		"fasting_insulin_uIUml", "total_chol_mgdl", "ldl_mgdl", "hdl_mgdl",
		"triglycerides_mgdl", "apob_mgdl", "apoa1_mgdl", "lpa_nmoll", "crp_mgL",
		"esr_mmhr", "alt_uL", "ast_uL", "creatinine_mgdl", "egfr_mlmin",
		"tsh_uIUmL", "t3_ngdl", "t4_ugdl", "cortisol_ugdl", "vitd_ngml",
		"b12_pgml", "ferritin_ngml", "omega3_index_percent",
	}, out)
}

func writeFitness(dir string, rows []models.FitnessRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			dateKey(r.Date), f1(r.VO2MaxEst), f1(r.FiveKmMin),
			itoa(r.DeadliftKg), itoa(r.SquatKg), f1(r.GripKg),
			itoa(r.FMSScore), f2(r.FEV1L),
		})
	}
	return writeCSV(dir, FileFitness, []string{
		"date", "vo2max_est", "5km_time_min", "1rm_deadlift_kg", "1rm_squat_kg",
		"grip_strength_kg", "fms_score", "spirometry_fev1_L",
	}, out)
}

func writeBodyComp(dir string, rows []models.BodyCompRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			dateKey(r.Date), f1(r.BodyfatPct), f1(r.LeanMassKg), f2(r.BoneTScore),
		})
	}
	return writeCSV(dir, FileBodyComp, []string{
		"date", "dexa_bodyfat_percent", "dexa_lean_mass_kg", "bone_density_tscore",
	}, out)
}

func writeInterventions(dir string, rows []models.InterventionRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			dateKey(r.Date), r.RuleID, r.TriggerMetric, f1(r.TriggerValue),
			r.Action, r.Owner, dateKey(r.FollowUpDate), r.Notes,
		})
	}
	return writeCSV(dir, FileInterventions, []string{
		"date", "rule_id", "trigger_metric", "trigger_value", "action", "owner",
		"follow_up_date", "notes",
	}, out)
}

func writeChats(dir string, rows []models.ChatRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Timestamp.Format(models.TimestampLayout), r.Sender, r.Role,
			r.Message, r.Tags, r.LinkedInterventionID,
		})
	}
	return writeCSV(dir, FileChats, []string{
		"datetime", "sender", "role", "message", "tags", "linked_intervention_id",
	}, out)
}

func writeKPIs(dir string, rows []models.KPIRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Month, f2(r.AdherenceAvg), itoa(r.SessionsTotal),
			itoa(r.ConsultsAttended), itoa(r.ConsultsMissed),
			f1(r.WeightChangeKg), f1(r.SleepAvg), f1(r.StressAvg),
			f1(r.LDLChange), f1(r.VO2MaxChange), itoa(r.RationaleCoverage),
		})
	}
	return writeCSV(dir, FileKPIs, []string{
		"month", "adherence_avg", "sessions_total", "consults_attended",
		"consults_missed", "weight_change_kg", "sleep_avg", "stress_avg",
		"ldl_change_mgdl", "vo2max_change", "rationale_coverage_percent",
	}, out)
}

func writeWeekly(dir string, rows []models.WeeklyRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			dateKey(r.WeekStart), f3(r.AdherenceAvg),
			itoa(r.TravelDays), itoa(r.IllnessDays),
		})
	}
	return writeCSV(dir, FileWeekly, []string{
		"week_start", "adherence_avg", "travel_days", "illness_days",
	}, out)
}

func writeProfile(dir string, m models.Member) error {
	return writeCSV(dir, FileProfile, []string{
		"member_id", "name", "age", "sex", "goals", "chronic_condition",
		"residence",
	}, [][]string{{
		m.MemberID, m.Name, itoa(m.Age), m.Sex, m.Goals, m.ChronicCondition,
		m.Residence,
	}})
}
