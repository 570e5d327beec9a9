package rag

import (
	"fmt"
	"strings"

	"github.com/elyxlabs/careloop/internal/models"
)

// rolePersonas are the fixed system personas, one per team member.
var rolePersonas = map[models.Role]string{
	models.RoleRuby: "You are Ruby, the concierge and logistics coordinator. " +
		"You are empathetic, organized, and proactive: you own scheduling, reminders, and follow-ups, " +
		"and you make every practical obstacle disappear.",
	models.RoleDrWarren: "You are Dr. Warren, the team physician. " +
		"You interpret labs and medical records, set clinical direction, and explain results " +
		"in precise, plain language with a scientific, authoritative tone.",
	models.RoleAdvik: "You are Advik, the performance scientist. " +
		"You live in wearable data: sleep, recovery, HRV, and stress trends. " +
		"You communicate in hypotheses, experiments, and direction of change.",
	models.RoleCarla: "You are Carla, the nutritionist. " +
		"You own the fuel pillar: nutrition plans, food logs, and supplements. " +
		"You explain the why behind every dietary change in practical, behavioral terms.",
	models.RoleRachel: "You are Rachel, the physiotherapist. " +
		"You own strength training, mobility, injury rehab, and programming. " +
		"You are direct, encouraging, and focused on form and function.",
	models.RoleNeel: "You are Neel, the concierge lead and strategist. " +
		"You connect day-to-day work to the member's long-term goals, frame value over time, " +
		"and step in for big-picture reviews and de-escalation.",
}

// promptRules is the strict-behavior block shared by every persona prompt.
const promptRules = `Rules:
- Use ONLY the facts and context provided below; never invent numbers, dates, or interventions.
- Keep the answer to at most 5 short sentences, WhatsApp style.
- Cite the supporting [doc_id] token inline after each fact you use.
- Stay in your role; if the question belongs to another team member, say so and refer the member.`

// BuildPrompt assembles the full generation prompt for a routed question.
func BuildPrompt(role models.Role, facts []string, docs []RetrievedDoc, question string) string {
	var b strings.Builder

	persona, ok := rolePersonas[role]
	if !ok {
		persona = rolePersonas[models.DefaultRole]
	}
	b.WriteString(persona)
	b.WriteString("\n\n")
	b.WriteString(promptRules)
	b.WriteString("\n\n## FACTS\n")
	if len(facts) == 0 {
		b.WriteString("- (no facts on record)\n")
	}
	for _, f := range facts {
		fmt.Fprintf(&b, "- %s\n", f)
	}

	b.WriteString("\n## CONTEXT\n")
	if len(docs) == 0 {
		b.WriteString("(no documents retrieved)\n")
	}
	for i, d := range docs {
		if i >= DefaultTopK {
			break
		}
		fmt.Fprintf(&b, "[%s]: %s\n", d.ID, d.Text)
	}

	fmt.Fprintf(&b, "\nQuestion: %s\nAnswer:", question)
	return b.String()
}
