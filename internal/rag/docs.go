package rag

import (
	"fmt"
	"strings"

	"github.com/elyxlabs/careloop/internal/models"
)

// BuildDocuments flattens a dataset into vector-store documents in the fixed
// ingest order: body_comp, daily, events, fitness, interventions, kpis, labs,
// chats, then the profile. Same-id documents upsert downstream, so later
// sources win on collision.
func BuildDocuments(ds *Dataset) []models.Document {
	var docs []models.Document
	for _, b := range ds.BodyComp {
		docs = append(docs, bodyCompDoc(b))
	}
	for _, d := range ds.Daily {
		docs = append(docs, dailyDoc(d))
	}
	for _, e := range ds.Events {
		docs = append(docs, eventDoc(e))
	}
	for _, f := range ds.Fitness {
		docs = append(docs, fitnessDoc(f))
	}
	for _, iv := range ds.Interventions {
		docs = append(docs, interventionDoc(iv))
	}
	for _, k := range ds.KPIs {
		docs = append(docs, kpiDoc(k))
	}
	for _, l := range ds.Labs {
		docs = append(docs, labDoc(l))
	}
	for _, c := range ds.Chats {
		docs = append(docs, chatDoc(c))
	}
	docs = append(docs, profileDoc(ds.Member))
	return docs
}

func joinFields(fields ...string) string { return strings.Join(fields, " | ") }

func bodyCompDoc(b models.BodyCompRow) models.Document {
	date := b.Date.Format(models.DateLayout)
	return models.Document{
		ID:   models.DocBodyComp + ":" + date,
		Type: models.DocBodyComp,
		Text: joinFields(
			date,
			fmt.Sprintf("body fat %.1f%%", b.BodyfatPct),
			fmt.Sprintf("lean mass %.1f kg", b.LeanMassKg),
			fmt.Sprintf("bone density t-score %.2f", b.BoneTScore),
		),
		Metadata: map[string]any{"date": date, "bodyfat": b.BodyfatPct},
	}
}

func dailyDoc(d models.DailyRow) models.Document {
	date := d.Date.Format(models.DateLayout)
	return models.Document{
		ID:   models.DocDaily + ":" + date,
		Type: models.DocDaily,
		Text: joinFields(
			date,
			fmt.Sprintf("adherence %.0f%%", d.Adherence*100),
			fmt.Sprintf("%d steps", d.Steps),
			fmt.Sprintf("RHR %d bpm", d.RHRBpm),
			fmt.Sprintf("HRV %.1f ms", d.HRVMs),
			fmt.Sprintf("sleep %.1f h (quality %d/5)", d.SleepHours, d.SleepQuality),
			fmt.Sprintf("stress %d/5", d.StressScore),
			fmt.Sprintf("weight %.2f kg", d.WeightKg),
			fmt.Sprintf("caloric balance %d kcal", d.CaloricBalance),
		),
		Metadata: map[string]any{"date": date, "rhr": float64(d.RHRBpm), "hrv": d.HRVMs},
	}
}

func eventDoc(e models.EventRow) models.Document {
	date := e.Date.Format(models.DateLayout)
	return models.Document{
		ID:   models.DocEvent + ":" + date,
		Type: models.DocEvent,
		Text: joinFields(
			date,
			e.Type,
			fmt.Sprintf("intensity %d", e.Intensity),
			e.Notes,
		),
		Metadata: map[string]any{"date": date, "event_type": e.Type},
	}
}

func fitnessDoc(f models.FitnessRow) models.Document {
	date := f.Date.Format(models.DateLayout)
	return models.Document{
		ID:   models.DocFitness + ":" + date,
		Type: models.DocFitness,
		Text: joinFields(
			date,
			fmt.Sprintf("VO2max %.1f", f.VO2MaxEst),
			fmt.Sprintf("5km %.1f min", f.FiveKmMin),
			fmt.Sprintf("deadlift %d kg", f.DeadliftKg),
			fmt.Sprintf("squat %d kg", f.SquatKg),
			fmt.Sprintf("grip %.1f kg", f.GripKg),
			fmt.Sprintf("FMS %d/21", f.FMSScore),
			fmt.Sprintf("FEV1 %.2f L", f.FEV1L),
		),
		Metadata: map[string]any{"date": date, "vo2max": f.VO2MaxEst},
	}
}

func interventionDoc(iv models.InterventionRow) models.Document {
	date := iv.Date.Format(models.DateLayout)
	return models.Document{
		ID:   models.DocIntervention + ":" + date,
		Type: models.DocIntervention,
		Text: joinFields(
			date,
			iv.RuleID,
			fmt.Sprintf("%s=%.1f", iv.TriggerMetric, iv.TriggerValue),
			iv.Action,
			"owner "+iv.Owner,
			"follow-up "+iv.FollowUpDate.Format(models.DateLayout),
			iv.Notes,
		),
		Metadata: map[string]any{"date": date, "rule_id": iv.RuleID, "owner": iv.Owner},
	}
}

func kpiDoc(k models.KPIRow) models.Document {
	return models.Document{
		ID:   models.DocKPI + ":" + k.Month,
		Type: models.DocKPI,
		Text: joinFields(
			k.Month,
			fmt.Sprintf("adherence %.2f", k.AdherenceAvg),
			fmt.Sprintf("%d sessions", k.SessionsTotal),
			fmt.Sprintf("%d consults", k.ConsultsAttended),
			fmt.Sprintf("weight change %.1f kg", k.WeightChangeKg),
			fmt.Sprintf("sleep avg %.1f h", k.SleepAvg),
			fmt.Sprintf("LDL change %.1f mg/dL", k.LDLChange),
			fmt.Sprintf("VO2max change %.1f", k.VO2MaxChange),
			fmt.Sprintf("rationale coverage %d%%", k.RationaleCoverage),
		),
		Metadata: map[string]any{"month": k.Month, "adherence": k.AdherenceAvg},
	}
}

func labDoc(l models.LabsRow) models.Document {
	date := l.Date.Format(models.DateLayout)
	return models.Document{
		ID:   models.DocLab + ":" + date,
		Type: models.DocLab,
		Text: joinFields(
			date,
			fmt.Sprintf("fasting glucose %.1f mg/dL", l.FastingGlucose),
			fmt.Sprintf("OGTT 2h %.1f mg/dL", l.OGTT2h),
			fmt.Sprintf("total cholesterol %.1f mg/dL", l.TotalChol),
			fmt.Sprintf("LDL %.1f mg/dL", l.LDL),
			fmt.Sprintf("HDL %.1f mg/dL", l.HDL),
			fmt.Sprintf("triglycerides %.1f mg/dL", l.Triglycerides),
			fmt.Sprintf("ApoB %.1f mg/dL", l.ApoB),
			fmt.Sprintf("CRP %.2f mg/L", l.CRP),
			fmt.Sprintf("vitamin D %.1f ng/mL", l.VitD),
		),
		Metadata: map[string]any{"date": date, "ldl": l.LDL, "apob": l.ApoB},
	}
}

func chatDoc(c models.ChatRow) models.Document {
	ts := c.Timestamp.Format(models.TimestampLayout)
	date := c.Timestamp.Format(models.DateLayout)
	return models.Document{
		ID:   models.DocChat + ":" + ts,
		Type: models.DocChat,
		Text: joinFields(
			ts,
			c.Sender,
			c.Role,
			c.Message,
		),
		Metadata: map[string]any{"date": date, "sender": c.Sender, "role": c.Role},
	}
}

func profileDoc(m models.Member) models.Document {
	return models.Document{
		ID:   models.DocProfile + ":" + m.MemberID,
		Type: models.DocProfile,
		Text: joinFields(
			m.Name,
			fmt.Sprintf("age %d", m.Age),
			m.Sex,
			"goals: "+m.Goals,
			"condition: "+m.ChronicCondition,
			"residence: "+m.Residence,
		),
		Metadata: map[string]any{"member_id": m.MemberID},
	}
}
