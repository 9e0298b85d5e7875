package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"relatus/internal/graph"
)

// Readiness thresholds
const (
	strongStrengthFloor   = 4  // edge relationship strength that counts as "strong"
	freshInteractionDays  = 45 // max days since interaction to count as "fresh"
	staleInteractionDays  = 60 // days after which an interaction is a risk
	weakStrengthCeiling   = 3  // strictly below this counts as a weak relationship
	strongLevelThreshold  = 0.70
	mediumLevelThreshold  = 0.45
	strongSupporterFloor  = 3 // strong supporters that qualify a network alone
	maxRiskAlertEntries   = 3
	maxMissingSectorCount = 3
)

// Readiness levels
const (
	LevelStrong = "strong"
	LevelMedium = "medium"
	LevelWeak   = "weak"
)

// supporter is one PERSON supporting a goal, with interaction staleness
// precomputed
type supporter struct {
	person    *graph.Node
	edge      *graph.Edge
	daysSince *int // nil when no interaction was ever recorded
}

// NetworkReport assesses whether a goal has a healthy support network
type NetworkReport struct {
	Goal             *graph.Node `json:"goal"`
	TotalSupporters  int         `json:"total_supporters"`
	StrongCount      int         `json:"strong_count"`
	FreshCount       int         `json:"fresh_count"`
	ReadinessScore   float64     `json:"readiness_score"`
	Level            string      `json:"level"`
	Summary          string      `json:"summary"`
	SectorHighlights []string    `json:"sector_highlights"`
	RiskAlerts       []string    `json:"risk_alerts"`
}

// AnalyzeGoalNetwork scores a goal's supporter network for strength and
// freshness, highlights sector coverage gaps, and raises risk alerts.
func (e *Engine) AnalyzeGoalNetwork(ctx context.Context, ownerID, goalID string) (*NetworkReport, error) {
	goal, err := e.getOwnedTypedNode(ctx, ownerID, goalID, graph.NodeTypeGoal)
	if err != nil {
		return nil, err
	}

	supporters, err := e.goalSupporters(ctx, ownerID, goal.ID)
	if err != nil {
		return nil, err
	}

	report := &NetworkReport{
		Goal:             goal,
		TotalSupporters:  len(supporters),
		SectorHighlights: []string{},
		RiskAlerts:       []string{},
	}

	for _, s := range supporters {
		if s.edge.RelationshipStrength != nil && *s.edge.RelationshipStrength >= strongStrengthFloor {
			report.StrongCount++
		}
		if s.daysSince != nil && *s.daysSince <= freshInteractionDays {
			report.FreshCount++
		}
	}

	total := len(supporters)
	if total > 0 {
		score := 0.6*(float64(report.StrongCount)/float64(total)) +
			0.4*(float64(report.FreshCount)/float64(total))
		report.ReadinessScore = math.Round(score*100) / 100
	}

	switch {
	case total == 0:
		report.Level = LevelWeak
		report.Summary = "This goal has no support network yet. Link people to it to get started."
	case report.ReadinessScore >= strongLevelThreshold || report.StrongCount >= strongSupporterFloor:
		report.Level = LevelStrong
		report.Summary = fmt.Sprintf("Strong network: %d of %d supporters are close relationships.",
			report.StrongCount, total)
	case report.ReadinessScore >= mediumLevelThreshold:
		report.Level = LevelMedium
		report.Summary = fmt.Sprintf("Network is forming: %d supporters, but strength or freshness is lacking.", total)
	default:
		report.Level = LevelWeak
		report.Summary = fmt.Sprintf("Weak network: %d supporters need stronger or more recent contact.", total)
	}

	highlights, err := e.sectorHighlights(ctx, ownerID, supporters)
	if err != nil {
		return nil, err
	}
	report.SectorHighlights = highlights
	report.RiskAlerts = riskAlerts(supporters)

	return report, nil
}

// goalSupporters gathers SUPPORTS edges targeting the goal whose source is
// a PERSON owned by the same user
func (e *Engine) goalSupporters(ctx context.Context, ownerID, goalID string) ([]supporter, error) {
	incoming, err := e.store.ListEdgesByTarget(ctx, goalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var supporters []supporter
	for _, edge := range incoming {
		if edge.Type != graph.EdgeTypeSupports {
			continue
		}
		person, err := e.store.GetNode(ctx, edge.SourceNodeID)
		if err != nil || person.OwnerID != ownerID || person.Type != graph.NodeTypePerson {
			continue
		}

		s := supporter{person: person, edge: edge}
		if edge.LastInteractionDate != nil {
			days := int(now.Sub(*edge.LastInteractionDate).Hours() / 24)
			s.daysSince = &days
		}
		supporters = append(supporters, s)
	}
	return supporters, nil
}

// sectorHighlights names the best-covered sector among supporters, then up
// to three sectors present in the owner's wider network but absent from the
// support circle, ordered by overall frequency.
func (e *Engine) sectorHighlights(ctx context.Context, ownerID string, supporters []supporter) ([]string, error) {
	highlights := []string{}

	supporterSectors := make(map[string]int)
	for _, s := range supporters {
		sector := strings.TrimSpace(s.person.Sector)
		if sector != "" {
			supporterSectors[strings.ToLower(sector)]++
		}
	}

	people, err := e.store.ListNodesByOwnerAndType(ctx, ownerID, graph.NodeTypePerson)
	if err != nil {
		return nil, err
	}
	overall := make(map[string]int)
	display := make(map[string]string)
	for _, p := range people {
		sector := strings.TrimSpace(p.Sector)
		if sector == "" {
			continue
		}
		key := strings.ToLower(sector)
		overall[key]++
		if _, ok := display[key]; !ok {
			display[key] = sector
		}
	}

	if top, count := topSector(supporterSectors); top != "" {
		name := display[top]
		if name == "" {
			name = top
		}
		highlights = append(highlights, fmt.Sprintf(
			"%d of your supporters work in %s.", count, name))
	}

	missing := []string{}
	for _, key := range sectorsByFrequency(overall) {
		if supporterSectors[key] == 0 {
			missing = append(missing, display[key])
			if len(missing) >= maxMissingSectorCount {
				break
			}
		}
	}
	for _, name := range missing {
		highlights = append(highlights, fmt.Sprintf(
			"No supporter from %s yet, although your network covers it.", name))
	}

	return highlights, nil
}

// riskAlerts renders the staleness and weakness lists. The two lists are
// computed independently and may mention the same person twice.
func riskAlerts(supporters []supporter) []string {
	if len(supporters) == 0 {
		return []string{"This goal has no supporters yet."}
	}

	alerts := []string{}

	stale := make([]supporter, 0, len(supporters))
	for _, s := range supporters {
		if s.daysSince != nil && *s.daysSince > staleInteractionDays {
			stale = append(stale, s)
		}
	}
	sort.SliceStable(stale, func(i, j int) bool {
		return *stale[i].daysSince > *stale[j].daysSince
	})
	for i, s := range stale {
		if i >= maxRiskAlertEntries {
			break
		}
		alerts = append(alerts, fmt.Sprintf(
			"No contact with %s for %d days.", s.person.Name, *s.daysSince))
	}

	weakCount := 0
	for _, s := range supporters {
		strength := 0
		if s.edge.RelationshipStrength != nil {
			strength = *s.edge.RelationshipStrength
		}
		if strength < weakStrengthCeiling {
			alerts = append(alerts, fmt.Sprintf(
				"Relationship with %s is weak (strength %d).", s.person.Name, strength))
			weakCount++
			if weakCount >= maxRiskAlertEntries {
				break
			}
		}
	}

	if len(alerts) == 0 {
		alerts = append(alerts, "No critical risk found in this support network.")
	}
	return alerts
}

func topSector(counts map[string]int) (string, int) {
	best, bestCount := "", 0
	for _, key := range sectorsByFrequency(counts) {
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}
	return best, bestCount
}

// sectorsByFrequency orders sector keys by count descending, alphabetical
// on ties so output is deterministic
func sectorsByFrequency(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
