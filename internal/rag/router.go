package rag

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/elyxlabs/careloop/internal/models"
)

// rolePhrases maps each persona to exact phrases that route to it outright.
// Scan order matters: first hit wins.
var rolePhrases = []struct {
	role    models.Role
	phrases []string
}{
	{models.RoleRuby, []string{
		"book an appointment", "reschedule", "who do i talk to", "concierge",
	}},
	{models.RoleDrWarren, []string{
		"lab results", "blood test", "blood panel", "medical report", "my doctor",
	}},
	{models.RoleAdvik, []string{
		"wearable data", "sleep score", "recovery score", "whoop", "garmin",
	}},
	{models.RoleCarla, []string{
		"meal plan", "what should i eat", "diet plan", "nutrition plan",
	}},
	{models.RoleRachel, []string{
		"workout plan", "training program", "strength program", "physio",
	}},
	{models.RoleNeel, []string{
		"big picture", "long-term strategy", "worth the cost", "value of the program",
	}},
}

// roleKeywords holds each persona's scoring vocabulary: +2 for a whole-token
// hit, +1 for a word-boundary substring hit.
var roleKeywords = []struct {
	role     models.Role
	keywords []string
}{
	{models.RoleRuby, []string{
		"schedule", "appointment", "booking", "logistics", "travel", "reminder",
		"coordinate", "arrange",
	}},
	{models.RoleDrWarren, []string{
		"lab", "labs", "ldl", "apob", "cholesterol", "glucose", "blood",
		"medical", "medication", "diagnosis", "crp", "lipid",
	}},
	{models.RoleAdvik, []string{
		"hrv", "rhr", "sleep", "recovery", "wearable", "stress", "readiness",
		"heart",
	}},
	{models.RoleCarla, []string{
		"nutrition", "diet", "food", "meal", "calorie", "calories", "protein",
		"supplement", "fiber",
	}},
	{models.RoleRachel, []string{
		"strength", "workout", "exercise", "mobility", "rehab", "injury",
		"deadlift", "squat", "pain", "training",
	}},
	{models.RoleNeel, []string{
		"strategy", "progress", "value", "goal", "goals", "review", "outcome",
		"plan",
	}},
}

// Route resolves the responding persona for a question. An explicit role that
// names a member of the closed set wins; otherwise exact phrases, then
// keyword scoring; ambiguity falls back to Ruby.
func Route(question, explicitRole string) models.Role {
	if explicitRole != "" {
		if r, err := models.ParseRole(titleCase(explicitRole)); err == nil {
			return r
		}
	}

	q := strings.ToLower(question)
	for _, rp := range rolePhrases {
		for _, phrase := range rp.phrases {
			if strings.Contains(q, phrase) {
				return rp.role
			}
		}
	}
	return scoreKeywords(q)
}

// scoreKeywords runs the vocabulary scoring pass. A unique maximum wins; ties
// and all-zero scores route to the default.
func scoreKeywords(q string) models.Role {
	tokens := map[string]bool{}
	for _, tok := range strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		tokens[tok] = true
	}

	best := models.DefaultRole
	bestScore := 0
	tied := false
	for _, rk := range roleKeywords {
		score := 0
		for _, kw := range rk.keywords {
			if tokens[kw] {
				score += 2
			} else if matchesWordBoundary(q, kw) {
				score++
			}
		}
		if score > bestScore {
			best = rk.role
			bestScore = score
			tied = false
		} else if score == bestScore && score > 0 {
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return models.DefaultRole
	}
	return best
}

// matchesWordBoundary reports whether kw appears in q starting at a word
// boundary.
func matchesWordBoundary(q, kw string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw))
	return re.MatchString(q)
}

// titleCase capitalizes the first letter of each space-separated word,
// normalizing inputs like "dr. warren" to "Dr. Warren".
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
