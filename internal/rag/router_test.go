package rag

import (
	"testing"

	"github.com/elyxlabs/careloop/internal/models"
)

func TestRouteExplicitRole(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		want     models.Role
	}{
		{"exact", "Advik", models.RoleAdvik},
		{"lowercase", "carla", models.RoleCarla},
		{"doctor with period", "dr. warren", models.RoleDrWarren},
		{"upper", "NEEL", models.RoleNeel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route("anything at all", tt.explicit)
			if got != tt.want {
				t.Errorf("Route explicit %q = %q, want %q", tt.explicit, got, tt.want)
			}
		})
	}
}

func TestRouteUnknownExplicitFallsThrough(t *testing.T) {
	// An unknown explicit role is ignored; routing proceeds on the question.
	got := Route("how is my hrv trending?", "Dr. House")
	if got != models.RoleAdvik {
		t.Errorf("Route = %q, want Advik", got)
	}
}

func TestRoutePhrases(t *testing.T) {
	tests := []struct {
		question string
		want     models.Role
	}{
		{"Can you share my lab results from last week?", models.RoleDrWarren},
		{"I need to book an appointment for Tuesday", models.RoleRuby},
		{"What does my sleep score say about recovery?", models.RoleAdvik},
		{"Can we update my meal plan for travel?", models.RoleCarla},
		{"Send me the new workout plan please", models.RoleRachel},
		{"Is this program worth the cost so far?", models.RoleNeel},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := Route(tt.question, ""); got != tt.want {
				t.Errorf("Route(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestRouteKeywordScoring(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     models.Role
	}{
		{"clinical", "why is my ldl and apob still high", models.RoleDrWarren},
		{"wearables", "my hrv dropped and rhr is up", models.RoleAdvik},
		{"nutrition", "how much protein should each meal have", models.RoleCarla},
		{"strength", "my squat form causes knee pain", models.RoleRachel},
		{"logistics", "please arrange a reminder before I travel", models.RoleRuby},
		{"no signal", "hello there", models.RoleRuby},
		{"empty", "", models.RoleRuby},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Route(tt.question, ""); got != tt.want {
				t.Errorf("Route(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ruby", "Ruby"},
		{"dr. warren", "Dr. Warren"},
		{"  RACHEL  ", "Rachel"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
