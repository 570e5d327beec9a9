package rag

import (
	"strings"
	"testing"
)

func TestEnforceCitations(t *testing.T) {
	retrieved := []string{"lab:2025-03-26", "chat:2025-03-01 09:15 +0800"}
	facts := []string{"Latest LDL: 143.2 mg/dL [lab:2025-01-01]"}

	tests := []struct {
		name       string
		answer     string
		wantSuffix bool
	}{
		{"cites retrieved doc", "Your LDL is improving [lab:2025-03-26].", false},
		{"cites fact token", "LDL was 143.2 [lab:2025-01-01] at baseline.", false},
		{"cites chat id with spaces", "We discussed this [chat:2025-03-01 09:15 +0800].", false},
		{"no citation", "Your LDL is improving nicely.", true},
		{"unknown citation", "Your LDL is improving [lab:1999-01-01].", true},
		{"empty answer", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnforceCitations(tt.answer, retrieved, facts)
			if tt.wantSuffix {
				if !strings.HasSuffix(got, "[General Context]") {
					t.Errorf("expected appended general citation, got %q", got)
				}
			} else if got != tt.answer {
				t.Errorf("answer was modified: %q -> %q", tt.answer, got)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	facts := []string{"Latest RHR: 63 bpm [daily:2025-03-01]"}
	docs := []RetrievedDoc{
		{ID: "daily:2025-03-01", Text: "2025-03-01 | RHR 63 bpm"},
		{ID: "daily:2025-02-28", Text: "2025-02-28 | RHR 64 bpm"},
	}
	prompt := BuildPrompt("Advik", facts, docs, "how is my heart rate?")

	for _, want := range []string{
		"You are Advik",
		"## FACTS",
		"- Latest RHR: 63 bpm [daily:2025-03-01]",
		"[daily:2025-03-01]: 2025-03-01 | RHR 63 bpm",
		"Question: how is my heart rate?",
		"Answer:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(prompt, "Use ONLY the facts") {
		t.Error("prompt missing strict rules block")
	}
}

func TestBuildPromptEmptySections(t *testing.T) {
	prompt := BuildPrompt("Ruby", nil, nil, "hello")
	if !strings.Contains(prompt, "(no facts on record)") {
		t.Error("prompt missing empty-facts marker")
	}
	if !strings.Contains(prompt, "(no documents retrieved)") {
		t.Error("prompt missing empty-context marker")
	}
}
