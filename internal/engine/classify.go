package engine

import (
	"fmt"
	"regexp"
	"strings"

	"relatus/internal/graph"
)

// ============================================================================
// Classification Heuristics
// ============================================================================
//
// Two heuristics share one pattern: score candidate categories from keyword
// hits and structural signals, pick the argmax, and express confidence as
// bestScore / sum(allScores).

// Keyword weights for node-type classification
const (
	nameKeywordWeight        = 3.0
	descriptionKeywordWeight = 1.0
	structuralSignalWeight   = 2.0
)

// SectorUnclassified is returned when no sector keyword matches
const SectorUnclassified = "Unclassified"

var typeKeywords = map[graph.NodeType][]string{
	graph.NodeTypeVision: {
		"vision", "dream", "aspiration", "purpose", "north star", "mission", "legacy",
	},
	graph.NodeTypeGoal: {
		"goal", "objective", "target", "achieve", "milestone", "okr", "outcome", "reach",
	},
	graph.NodeTypeProject: {
		"project", "build", "launch", "ship", "implement", "initiative", "prototype", "mvp",
	},
}

// typeCandidates fixes the scoring (and tie-break) order
var typeCandidates = []graph.NodeType{
	graph.NodeTypeVision,
	graph.NodeTypeGoal,
	graph.NodeTypeProject,
}

var sectorKeywords = map[string][]string{
	"Fintech": {
		"fintech", "payments", "banking", "bank", "insurance", "lending", "trading", "crypto",
	},
	"Healthcare": {
		"health", "medical", "clinic", "hospital", "pharma", "biotech", "wellness",
	},
	"Technology": {
		"software", "tech", "saas", "cloud", "data", "ai", "platform", "developer",
	},
	"Education": {
		"education", "school", "university", "teaching", "learning", "edtech", "academy",
	},
	"Energy": {
		"energy", "solar", "renewable", "oil", "gas", "utility", "climate",
	},
	"Media": {
		"media", "marketing", "advertising", "content", "publishing", "entertainment", "film",
	},
	"Real Estate": {
		"real estate", "property", "construction", "architecture", "housing",
	},
	"Government": {
		"government", "public sector", "policy", "nonprofit", "ngo", "civic",
	},
}

// sectorNames fixes iteration order for deterministic tie-breaks
var sectorNames = []string{
	"Fintech", "Healthcare", "Technology", "Education",
	"Energy", "Media", "Real Estate", "Government",
}

var numericPattern = regexp.MustCompile(`\d`)

// TypeSuggestion is the outcome of node-type classification
type TypeSuggestion struct {
	Type       graph.NodeType             `json:"type"`
	Confidence float64                    `json:"confidence"`
	Scores     map[graph.NodeType]float64 `json:"scores"`
	Signals    []string                   `json:"signals"`
	Rationale  string                     `json:"rationale"`
}

// SectorSuggestion is the outcome of sector classification
type SectorSuggestion struct {
	Sector          string         `json:"sector"`
	Confidence      float64        `json:"confidence"`
	MatchedKeywords []string       `json:"matched_keywords"`
	HitsBySector    map[string]int `json:"hits_by_sector"`
}

// SuggestNodeType scores VISION, GOAL and PROJECT from keyword and
// structural signals and picks the best fit. Pure; never errs: an
// unclassifiable node yields zero confidence.
func (e *Engine) SuggestNodeType(node *graph.Node) *TypeSuggestion {
	name := normalizeText(node.Name)
	description := normalizeText(node.Description)

	scores := make(map[graph.NodeType]float64, len(typeCandidates))
	signals := make(map[graph.NodeType][]string, len(typeCandidates))

	addSignal := func(t graph.NodeType, weight float64, explanation string) {
		scores[t] += weight
		signals[t] = append(signals[t], explanation)
	}

	for _, t := range typeCandidates {
		scores[t] = 0
		for _, kw := range typeKeywords[t] {
			if strings.Contains(name, kw) {
				addSignal(t, nameKeywordWeight, fmt.Sprintf("name mentions %q", kw))
			}
			if strings.Contains(description, kw) {
				addSignal(t, descriptionKeywordWeight, fmt.Sprintf("description mentions %q", kw))
			}
		}
	}

	// Structural signals
	if node.Priority != nil && *node.Priority <= 2 {
		addSignal(graph.NodeTypeVision, structuralSignalWeight, "low priority value suggests a long-horizon vision")
	}
	if node.DueDate != nil {
		addSignal(graph.NodeTypeGoal, structuralSignalWeight, "has a due date")
	}
	if numericPattern.MatchString(node.Description) {
		addSignal(graph.NodeTypeGoal, descriptionKeywordWeight, "description contains a measurable number")
	}
	if node.StartDate != nil && node.EndDate != nil {
		addSignal(graph.NodeTypeProject, structuralSignalWeight, "has a start and end date")
	}
	if strings.TrimSpace(node.Status) != "" {
		addSignal(graph.NodeTypeProject, structuralSignalWeight, "carries a status")
	}

	best := typeCandidates[0]
	total := 0.0
	for _, t := range typeCandidates {
		total += scores[t]
		if scores[t] > scores[best] {
			best = t
		}
	}

	confidence := 0.0
	if total > 0 {
		confidence = scores[best] / total
	}

	winning := signals[best]
	if winning == nil {
		winning = []string{}
	}

	return &TypeSuggestion{
		Type:       best,
		Confidence: confidence,
		Scores:     scores,
		Signals:    winning,
		Rationale:  typeRationale(best, confidence, winning),
	}
}

// SuggestSector counts sector keyword hits over a node's combined text.
// Blank corpus or zero hits yields an unclassified sector with zero
// confidence rather than an error.
func (e *Engine) SuggestSector(node *graph.Node) *SectorSuggestion {
	corpus := normalizeText(strings.Join(append([]string{
		node.Name, node.Description, node.Notes,
	}, node.Tags...), " "))

	suggestion := &SectorSuggestion{
		Sector:          SectorUnclassified,
		MatchedKeywords: []string{},
		HitsBySector:    make(map[string]int),
	}
	if strings.TrimSpace(corpus) == "" {
		return suggestion
	}

	matched := make(map[string][]string, len(sectorNames))
	total := 0
	for _, sector := range sectorNames {
		for _, kw := range sectorKeywords[sector] {
			hits := countKeyword(corpus, kw)
			if hits > 0 {
				suggestion.HitsBySector[sector] += hits
				matched[sector] = append(matched[sector], kw)
				total += hits
			}
		}
	}
	if total == 0 {
		return suggestion
	}

	best := ""
	for _, sector := range sectorNames {
		if best == "" || suggestion.HitsBySector[sector] > suggestion.HitsBySector[best] {
			if suggestion.HitsBySector[sector] > 0 {
				best = sector
			}
		}
	}

	suggestion.Sector = best
	suggestion.Confidence = float64(suggestion.HitsBySector[best]) / float64(total)
	suggestion.MatchedKeywords = matched[best]
	return suggestion
}

func typeRationale(t graph.NodeType, confidence float64, signals []string) string {
	if len(signals) == 0 {
		return fmt.Sprintf("No classification signal found; defaulting to %s.", t)
	}
	return fmt.Sprintf("Looks like a %s (%.0f%% confident): %s.",
		t, confidence*100, strings.Join(signals, "; "))
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// countKeyword counts occurrences of kw in corpus. Single-word keywords
// match whole tokens only, so short keywords like "ai" don't fire inside
// unrelated words; phrases match as substrings.
func countKeyword(corpus, kw string) int {
	if strings.Contains(kw, " ") {
		return strings.Count(corpus, kw)
	}
	hits := 0
	for _, token := range tokenPattern.FindAllString(corpus, -1) {
		if token == kw {
			hits++
		}
	}
	return hits
}

// diacriticReplacer folds the accented characters that show up in imported
// contact data; anything rarer passes through unchanged
var diacriticReplacer = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ã", "a", "ä", "a", "å", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "õ", "o", "ö", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n", "ý", "y", "ß", "ss",
)

// normalizeText lowercases and strips common diacritics
func normalizeText(s string) string {
	return diacriticReplacer.Replace(strings.ToLower(s))
}
