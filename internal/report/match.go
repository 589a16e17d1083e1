package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pitchside/internal/insight"
	"pitchside/internal/news"
)

// TeamReport is the per-team section of a report file.
type TeamReport struct {
	Name     string                  `json:"name"`
	Summary  news.TeamSummary        `json:"summary"`
	Articles []news.ProcessedArticle `json:"processed_articles"`
	Brief    *insight.Brief          `json:"brief,omitempty"`
}

// MatchReport is written for a --match run.
type MatchReport struct {
	Match       string     `json:"match"`
	GeneratedAt time.Time  `json:"generated_at"`
	Home        TeamReport `json:"home_team"`
	Away        TeamReport `json:"away_team"`
}

// DefaultPath returns the report file name used when none is given.
func DefaultPath(dir, home, away string, at time.Time) string {
	name := fmt.Sprintf("match_%s_vs_%s_%s.json", fileSlug(home), fileSlug(away), at.UTC().Format("20060102_150405"))
	return filepath.Join(dir, name)
}

// WriteJSON writes v as indented JSON to path, creating parent
// directories.
func WriteJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func fileSlug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
