package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"relatus/pkg/logger"
)

const (
	fetchTimeout   = 10 * time.Second
	maxBodyBytes   = 256 * 1024
	fetchUserAgent = "Mozilla/5.0 (compatible; RelatusBot/1.0)"
)

// ProfileEnricher extracts company and role hints from a public profile
// page. It is best-effort by design: callers treat any failure as "no
// enrichment available".
type ProfileEnricher struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewProfileEnricher creates a profile enricher
func NewProfileEnricher() *ProfileEnricher {
	return &ProfileEnricher{
		httpClient: &http.Client{Timeout: fetchTimeout},
		logger:     logger.Named("enrich"),
	}
}

// Lookup fetches the profile URL and parses title/meta tags for a
// "Role at Company" pattern.
func (p *ProfileEnricher) Lookup(ctx context.Context, profileURL string) (string, string, error) {
	if !strings.HasPrefix(profileURL, "http://") && !strings.HasPrefix(profileURL, "https://") {
		profileURL = "https://" + profileURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("invalid profile URL: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("profile fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("profile fetch returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", fmt.Errorf("profile parse failed: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		title = strings.TrimSpace(og)
	}

	company, role := parseTitle(title)
	if company == "" && role == "" {
		return "", "", fmt.Errorf("no role/company hint in page title")
	}

	p.logger.Debug("Profile enriched",
		zap.String("url", profileURL),
		zap.String("company", company),
		zap.String("role", role),
	)
	return company, role, nil
}

// parseTitle extracts (company, role) from titles shaped like
// "Jane Doe - Staff Engineer at Acme | LinkedIn" or "Jane Doe — CTO, Acme"
func parseTitle(title string) (string, string) {
	if title == "" {
		return "", ""
	}

	// Strip the trailing site name segment
	if idx := strings.LastIndex(title, "|"); idx != -1 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)

	// The role/company segment usually follows the last dash
	for _, sep := range []string{" - ", " – ", " — "} {
		if idx := strings.LastIndex(title, sep); idx != -1 {
			title = strings.TrimSpace(title[idx+len(sep):])
			break
		}
	}

	if idx := strings.LastIndex(title, " at "); idx != -1 {
		role := strings.TrimSpace(title[:idx])
		company := strings.TrimSpace(title[idx+4:])
		return company, role
	}
	if idx := strings.LastIndex(title, ", "); idx != -1 {
		role := strings.TrimSpace(title[:idx])
		company := strings.TrimSpace(title[idx+2:])
		return company, role
	}
	return "", ""
}
