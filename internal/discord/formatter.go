package discord

import (
	"fmt"
	"strings"

	"relatus/internal/engine"
)

// ============================================================================
// Discord Message Formatting
// ============================================================================

// FormatNudges renders relationship nudges as a Discord markdown message
func FormatNudges(nudges []engine.Nudge) string {
	if len(nudges) == 0 {
		return "All caught up — no relationships need attention right now."
	}

	var b strings.Builder
	b.WriteString("**Relationships that need attention:**\n")
	for i, n := range nudges {
		b.WriteString(fmt.Sprintf("%d. **%s** — %s\n",
			i+1, n.Person.Name, strings.Join(n.Reasons, "; ")))
	}
	return b.String()
}

// FormatNetworkReport renders a goal network report as Discord markdown
func FormatNetworkReport(report *engine.NetworkReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**%s** — readiness %.2f (%s)\n",
		report.Goal.Name, report.ReadinessScore, report.Level))
	b.WriteString(report.Summary)
	b.WriteString("\n")

	if len(report.SectorHighlights) > 0 {
		b.WriteString("\n**Sectors:**\n")
		for _, h := range report.SectorHighlights {
			b.WriteString("- " + h + "\n")
		}
	}
	if len(report.RiskAlerts) > 0 {
		b.WriteString("\n**Risks:**\n")
		for _, a := range report.RiskAlerts {
			b.WriteString("- " + a + "\n")
		}
	}
	return b.String()
}
