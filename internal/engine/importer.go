package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"relatus/internal/graph"
)

// maxConcurrentBackfills bounds the embedding backfill fan-out after a batch
const maxConcurrentBackfills = 4

// Header aliases, in priority order where order matters
var (
	nameAliases      = []string{"name", "full name", "fullname", "contact name", "person"}
	firstNameAliases = []string{"first name", "firstname", "first"}
	lastNameAliases  = []string{"last name", "lastname", "surname", "last"}
	companyAliases   = []string{"company", "organization", "organisation", "employer"}
	roleAliases      = []string{"role", "title", "job title", "position"}
	sectorAliases    = []string{"sector", "industry"}
	tagAliases       = []string{"tags", "labels", "groups"}
	notesAliases     = []string{"notes", "note", "comments"}
	linkedinAliases  = []string{"linkedin", "linkedin url", "profile", "url"}
	strengthAliases  = []string{"relationship strength", "strength", "closeness"}
)

// ImportReport aggregates the outcome of one bulk import
type ImportReport struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

// importRow gives alias-based access to one CSV row
type importRow struct {
	values map[string]string
}

func (r importRow) first(aliases ...string) string {
	for _, alias := range aliases {
		if v := strings.TrimSpace(r.values[alias]); v != "" {
			return v
		}
	}
	return ""
}

// ImportPeople reconciles CSV rows into PERSON nodes. Header matching is
// alias-based and case-insensitive; a person whose name already exists for
// this owner is skipped silently; a row that cannot be resolved or created
// records an error and never aborts the batch.
func (e *Engine) ImportPeople(ctx context.Context, ownerID string, header []string, rows [][]string) (*ImportReport, error) {
	report := &ImportReport{Errors: []string{}}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	existing, err := e.store.ListNodesByOwnerAndType(ctx, ownerID, graph.NodeTypePerson)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[strings.ToLower(p.Name)] = true
	}

	var created []*graph.Node
	for i, raw := range rows {
		rowNum := i + 1
		report.Processed++

		row := importRow{values: make(map[string]string, len(columns))}
		for col, name := range columns {
			if col < len(raw) {
				row.values[name] = raw[col]
			}
		}

		name := row.first(nameAliases...)
		if name == "" {
			first := row.first(firstNameAliases...)
			last := row.first(lastNameAliases...)
			name = strings.TrimSpace(first + " " + last)
		}
		if name == "" {
			report.Errors = append(report.Errors,
				fmt.Sprintf("row %d: could not resolve a person name", rowNum))
			continue
		}

		if seen[strings.ToLower(name)] {
			report.Skipped++
			continue
		}

		input := NodeInput{
			Type:        graph.NodeTypePerson,
			Name:        name,
			Company:     row.first(companyAliases...),
			Role:        row.first(roleAliases...),
			Sector:      row.first(sectorAliases...),
			Notes:       row.first(notesAliases...),
			LinkedinURL: row.first(linkedinAliases...),
			Tags:        splitTags(row.first(tagAliases...)),
		}
		if raw := row.first(strengthAliases...); raw != "" {
			// Unparseable strengths are discarded, not fatal to the row
			if strength, err := strconv.Atoi(raw); err == nil {
				input.RelationshipStrength = &strength
			}
		}

		e.enrichImportInput(ctx, &input)

		node, err := e.createNode(ctx, ownerID, input, false)
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		seen[strings.ToLower(name)] = true
		report.Created++
		created = append(created, node)
	}

	e.backfillEmbeddings(ctx, created)

	e.logger.Info("Bulk import finished",
		zap.String("owner_id", ownerID),
		zap.Int("processed", report.Processed),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)),
	)
	return report, nil
}

// enrichImportInput backfills company/role from a public profile URL when an
// enricher is configured. Lookup failures are logged and ignored.
func (e *Engine) enrichImportInput(ctx context.Context, input *NodeInput) {
	if e.enricher == nil || input.LinkedinURL == "" {
		return
	}
	if input.Company != "" && input.Role != "" {
		return
	}

	company, role, err := e.enricher.Lookup(ctx, input.LinkedinURL)
	if err != nil {
		e.logger.Debug("Profile enrichment failed",
			zap.String("url", input.LinkedinURL),
			zap.Error(err),
		)
		return
	}
	if input.Company == "" {
		input.Company = company
	}
	if input.Role == "" {
		input.Role = role
	}
}

// backfillEmbeddings generates missing vectors for freshly created nodes
// with bounded concurrency; individual failures leave the node unembedded
func (e *Engine) backfillEmbeddings(ctx context.Context, nodes []*graph.Node) {
	pending := make([]*graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.HasEmbedding() && n.EmbeddingText() != "" {
			pending = append(pending, n)
		}
	}
	if len(pending) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBackfills)

	for _, node := range pending {
		n := node
		g.Go(func() error {
			if e.EnsureEmbedding(gctx, n) {
				if _, err := e.store.SaveNode(gctx, n); err != nil {
					e.logger.Warn("Failed to persist backfilled embedding",
						zap.String("node_id", n.ID),
						zap.Error(err),
					)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// splitTags splits a raw tag cell on commas and semicolons
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	return cleanTags(parts)
}
