package discord

import (
	"strings"
	"testing"

	"relatus/internal/engine"
	"relatus/internal/graph"
)

func TestFormatNudges_Empty(t *testing.T) {
	msg := FormatNudges(nil)
	if !strings.Contains(msg, "All caught up") {
		t.Errorf("empty nudge message = %q", msg)
	}
}

func TestFormatNudges_NumbersAndReasons(t *testing.T) {
	nudges := []engine.Nudge{
		{
			Person:  &graph.Node{Name: "Alice"},
			Reasons: []string{"last interaction was 90 days ago", "relationship strength is low"},
		},
		{
			Person:  &graph.Node{Name: "Bob"},
			Reasons: []string{"no interaction recorded"},
		},
	}

	msg := FormatNudges(nudges)
	if !strings.Contains(msg, "1. **Alice**") || !strings.Contains(msg, "2. **Bob**") {
		t.Errorf("numbering missing: %q", msg)
	}
	if !strings.Contains(msg, "90 days ago; relationship strength is low") {
		t.Errorf("reasons not joined: %q", msg)
	}
}

func TestFormatNetworkReport(t *testing.T) {
	report := &engine.NetworkReport{
		Goal:             &graph.Node{Name: "Raise seed round"},
		ReadinessScore:   0.30,
		Level:            engine.LevelWeak,
		Summary:          "Weak network: 2 supporters need stronger or more recent contact.",
		SectorHighlights: []string{"2 of your supporters work in Fintech."},
		RiskAlerts:       []string{"No contact with B for 200 days."},
	}

	msg := FormatNetworkReport(report)
	for _, want := range []string{
		"**Raise seed round** — readiness 0.30 (weak)",
		"Weak network: 2 supporters",
		"**Sectors:**",
		"- 2 of your supporters work in Fintech.",
		"**Risks:**",
		"- No contact with B for 200 days.",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
