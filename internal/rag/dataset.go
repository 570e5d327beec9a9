// Package rag implements the retrieval-augmented QA stack over a generated
// dataset: CSV loading, document building and ingest, role routing, fact
// assembly, role-scoped retrieval, and the citation-enforced answer chain.
package rag

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/elyxlabs/careloop/internal/models"
	"github.com/elyxlabs/careloop/internal/synth"
)

// Dataset is the in-memory view of one generated member dataset.
type Dataset struct {
	Member        models.Member
	Events        []models.EventRow
	Daily         []models.DailyRow
	Labs          []models.LabsRow
	Fitness       []models.FitnessRow
	BodyComp      []models.BodyCompRow
	Interventions []models.InterventionRow
	Chats         []models.ChatRow
	KPIs          []models.KPIRow
}

// LoadDataset reads every CSV of a generated dataset from dir. Rows with
// unparseable dates or wrong field counts are skipped and logged, never
// fatal; a missing file is ErrMissingSourceFile.
func LoadDataset(dir string, log *slog.Logger) (*Dataset, error) {
	ds := &Dataset{}

	loaders := []struct {
		file string
		load func(rows [][]string, log *slog.Logger)
	}{
		{synth.FileProfile, func(rows [][]string, log *slog.Logger) { ds.Member = parseMember(rows, log) }},
		{synth.FileEvents, func(rows [][]string, log *slog.Logger) { ds.Events = parseEvents(rows, log) }},
		{synth.FileDaily, func(rows [][]string, log *slog.Logger) { ds.Daily = parseDaily(rows, log) }},
		{synth.FileLabs, func(rows [][]string, log *slog.Logger) { ds.Labs = parseLabs(rows, log) }},
		{synth.FileFitness, func(rows [][]string, log *slog.Logger) { ds.Fitness = parseFitness(rows, log) }},
		{synth.FileBodyComp, func(rows [][]string, log *slog.Logger) { ds.BodyComp = parseBodyComp(rows, log) }},
		{synth.FileInterventions, func(rows [][]string, log *slog.Logger) { ds.Interventions = parseInterventions(rows, log) }},
		{synth.FileChats, func(rows [][]string, log *slog.Logger) { ds.Chats = parseChats(rows, log) }},
		{synth.FileKPIs, func(rows [][]string, log *slog.Logger) { ds.KPIs = parseKPIs(rows, log) }},
	}
	for _, l := range loaders {
		rows, err := readRows(filepath.Join(dir, l.file))
		if err != nil {
			return nil, err
		}
		l.load(rows, log.With("file", l.file))
	}
	return ds, nil
}

// readRows reads a CSV file and returns its data rows, header stripped.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, models.ErrMissingSourceFile)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // field-count validation happens per parser
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// row wraps a record with index-based typed accessors that record the first
// failure instead of panicking, so one bad field skips one row.
type row struct {
	fields []string
	err    error
}

func (r *row) str(i int) string {
	if r.err != nil || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

func (r *row) date(i int) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	t, err := time.Parse(models.DateLayout, r.str(i))
	if err != nil {
		r.err = fmt.Errorf("field %d: %w", i, err)
	}
	return t
}

func (r *row) timestamp(i int) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	t, err := time.Parse(models.TimestampLayout, r.str(i))
	if err != nil {
		r.err = fmt.Errorf("field %d: %w", i, err)
	}
	return t
}

func (r *row) float(i int) float64 {
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(r.str(i), 64)
	if err != nil {
		r.err = fmt.Errorf("field %d: %w", i, err)
	}
	return v
}

func (r *row) int(i int) int {
	if r.err != nil {
		return 0
	}
	v, err := strconv.Atoi(r.str(i))
	if err != nil {
		r.err = fmt.Errorf("field %d: %w", i, err)
	}
	return v
}

// malformed logs and reports a row that cannot be used.
func malformed(log *slog.Logger, idx int, fields []string, want int, err error) {
	log.Warn("skipping malformed row", "row", idx+1, "fields", len(fields), "want", want, "error", err)
}

func parseMember(rows [][]string, log *slog.Logger) models.Member {
	for i, rec := range rows {
		if len(rec) != 7 {
			malformed(log, i, rec, 7, nil)
			continue
		}
		r := &row{fields: rec}
		m := models.Member{
			MemberID:         r.str(0),
			Name:             r.str(1),
			Age:              r.int(2),
			Sex:              r.str(3),
			Goals:            r.str(4),
			ChronicCondition: r.str(5),
			Residence:        r.str(6),
		}
		if r.err != nil {
			malformed(log, i, rec, 7, r.err)
			continue
		}
		return m
	}
	return models.Member{}
}

func parseEvents(rows [][]string, log *slog.Logger) []models.EventRow {
	var out []models.EventRow
	for i, rec := range rows {
		if len(rec) != 4 {
			malformed(log, i, rec, 4, nil)
			continue
		}
		r := &row{fields: rec}
		e := models.EventRow{
			Date:      r.date(0),
			Type:      r.str(1),
			Intensity: r.int(2),
			Notes:     r.str(3),
		}
		if r.err != nil {
			malformed(log, i, rec, 4, r.err)
			continue
		}
		out = append(out, e)
	}
	return out
}

func parseDaily(rows [][]string, log *slog.Logger) []models.DailyRow {
	var out []models.DailyRow
	for i, rec := range rows {
		if len(rec) != 12 {
			malformed(log, i, rec, 12, nil)
			continue
		}
		r := &row{fields: rec}
		d := models.DailyRow{
			Date:           r.date(0),
			Adherence:      r.float(1),
			Steps:          r.int(2),
			ActiveMinutes:  r.int(3),
			WeightKg:       r.float(4),
			RHRBpm:         r.int(5),
			HRVMs:          r.float(6),
			SleepHours:     r.float(7),
			SleepQuality:   r.int(8),
			StressScore:    r.int(9),
			Soreness:       r.int(10),
			CaloricBalance: r.int(11),
		}
		if r.err != nil {
			malformed(log, i, rec, 12, r.err)
			continue
		}
		out = append(out, d)
	}
	return out
}

func parseLabs(rows [][]string, log *slog.Logger) []models.LabsRow {
	var out []models.LabsRow
	for i, rec := range rows {
		if len(rec) != 25 {
			malformed(log, i, rec, 25, nil)
			continue
		}
		r := &row{fields: rec}
		l := models.LabsRow{
			Date:           r.date(0),
			FastingGlucose: r.float(1),
			OGTT2h:         r.float(2),
			FastingInsulin: r.float(3),
			TotalChol:      r.float(4),
			LDL:            r.float(5),
			HDL:            r.float(6),
			Triglycerides:  r.float(7),
			ApoB:           r.float(8),
			ApoA1:          r.float(9),
			LpA:            r.int(10),
			CRP:            r.float(11),
			ESR:            r.int(12),
			ALT:            r.int(13),
			AST:            r.int(14),
			Creatinine:     r.float(15),
			EGFR:           r.int(16),
			TSH:            r.float(17),
			T3:             r.float(18),
			T4:             r.float(19),
			Cortisol:       r.float(20),
			VitD:           r.float(21),
			B12:            r.float(22),
			Ferritin:       r.float(23),
			Omega3Index:    r.float(24),
		}
		if r.err != nil {
			malformed(log, i, rec, 25, r.err)
			continue
		}
		out = append(out, l)
	}
	return out
}

func parseFitness(rows [][]string, log *slog.Logger) []models.FitnessRow {
	var out []models.FitnessRow
	for i, rec := range rows {
		if len(rec) != 8 {
			malformed(log, i, rec, 8, nil)
			continue
		}
		r := &row{fields: rec}
		f := models.FitnessRow{
			Date:       r.date(0),
			VO2MaxEst:  r.float(1),
			FiveKmMin:  r.float(2),
			DeadliftKg: r.int(3),
			SquatKg:    r.int(4),
			GripKg:     r.float(5),
			FMSScore:   r.int(6),
			FEV1L:      r.float(7),
		}
		if r.err != nil {
			malformed(log, i, rec, 8, r.err)
			continue
		}
		out = append(out, f)
	}
	return out
}

func parseBodyComp(rows [][]string, log *slog.Logger) []models.BodyCompRow {
	var out []models.BodyCompRow
	for i, rec := range rows {
		if len(rec) != 4 {
			malformed(log, i, rec, 4, nil)
			continue
		}
		r := &row{fields: rec}
		b := models.BodyCompRow{
			Date:       r.date(0),
			BodyfatPct: r.float(1),
			LeanMassKg: r.float(2),
			BoneTScore: r.float(3),
		}
		if r.err != nil {
			malformed(log, i, rec, 4, r.err)
			continue
		}
		out = append(out, b)
	}
	return out
}

func parseInterventions(rows [][]string, log *slog.Logger) []models.InterventionRow {
	var out []models.InterventionRow
	for i, rec := range rows {
		if len(rec) != 8 {
			malformed(log, i, rec, 8, nil)
			continue
		}
		r := &row{fields: rec}
		iv := models.InterventionRow{
			Date:          r.date(0),
			RuleID:        r.str(1),
			TriggerMetric: r.str(2),
			TriggerValue:  r.float(3),
			Action:        r.str(4),
			Owner:         r.str(5),
			FollowUpDate:  r.date(6),
			Notes:         r.str(7),
		}
		if r.err != nil {
			malformed(log, i, rec, 8, r.err)
			continue
		}
		out = append(out, iv)
	}
	return out
}

func parseChats(rows [][]string, log *slog.Logger) []models.ChatRow {
	var out []models.ChatRow
	for i, rec := range rows {
		if len(rec) != 6 {
			malformed(log, i, rec, 6, nil)
			continue
		}
		r := &row{fields: rec}
		c := models.ChatRow{
			Timestamp:            r.timestamp(0),
			Sender:               r.str(1),
			Role:                 r.str(2),
			Message:              r.str(3),
			Tags:                 r.str(4),
			LinkedInterventionID: r.str(5),
		}
		if r.err != nil {
			malformed(log, i, rec, 6, r.err)
			continue
		}
		out = append(out, c)
	}
	return out
}

func parseKPIs(rows [][]string, log *slog.Logger) []models.KPIRow {
	var out []models.KPIRow
	for i, rec := range rows {
		if len(rec) != 11 {
			malformed(log, i, rec, 11, nil)
			continue
		}
		r := &row{fields: rec}
		k := models.KPIRow{
			Month:             r.str(0),
			AdherenceAvg:      r.float(1),
			SessionsTotal:     r.int(2),
			ConsultsAttended:  r.int(3),
			ConsultsMissed:    r.int(4),
			WeightChangeKg:    r.float(5),
			SleepAvg:          r.float(6),
			StressAvg:         r.float(7),
			LDLChange:         r.float(8),
			VO2MaxChange:      r.float(9),
			RationaleCoverage: r.int(10),
		}
		if r.err != nil {
			malformed(log, i, rec, 11, r.err)
			continue
		}
		out = append(out, k)
	}
	return out
}
