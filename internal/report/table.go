// Package report renders pipeline results as aligned terminal tables and
// JSON report files.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pitchside/internal/dupes"
	"pitchside/internal/news"
	"pitchside/internal/storage"
)

const (
	maxCellWidth = 60
	minColWidth  = 3
	dateLayout   = "2006-01-02 15:04"
)

// Table is a header row plus data rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render writes t as a pipe table, padding cells by display width so
// accented and wide runes stay aligned. Long cells are truncated.
func (t Table) Render(w io.Writer) error {
	colCount := len(t.Headers)
	for _, row := range t.Rows {
		colCount = max(colCount, len(row))
	}
	if colCount == 0 {
		return nil
	}

	cell := func(row []string, i int) string {
		if i >= len(row) {
			return ""
		}
		return runewidth.Truncate(strings.TrimSpace(row[i]), maxCellWidth, "…")
	}

	widths := make([]int, colCount)
	for i := range widths {
		widths[i] = minColWidth
	}
	for _, row := range append([][]string{t.Headers}, t.Rows...) {
		for i := 0; i < colCount; i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(cell(row, i)))
		}
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		sb.WriteString("|")
		for i := 0; i < colCount; i++ {
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(cell(row, i), widths[i]))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(t.Headers)
	sb.WriteString("|")
	for i := 0; i < colCount; i++ {
		sb.WriteString(" " + strings.Repeat("-", widths[i]) + " |")
	}
	sb.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// CategoryLabel title-cases a category for display.
func CategoryLabel(c news.Category) string {
	return cases.Title(language.English).String(string(c))
}

// SummaryTable has one row per team summary.
func SummaryTable(summaries ...news.TeamSummary) Table {
	t := Table{Headers: []string{"Team", "Articles", "Sentiment", "Positive", "Negative", "Reliability", "Top category", "Key players"}}
	for _, s := range summaries {
		var players []string
		for _, e := range s.Entities {
			players = append(players, e.Name)
		}
		t.Rows = append(t.Rows, []string{
			s.TeamID,
			fmt.Sprint(s.ArticleCount),
			fmt.Sprintf("%+.2f", s.MeanSentiment),
			fmt.Sprint(s.PositiveCount),
			fmt.Sprint(s.NegativeCount),
			fmt.Sprintf("%.2f", s.MeanReliability),
			topCategory(s),
			strings.Join(players, ", "),
		})
	}
	return t
}

// ArticlesTable lists processed articles in the given order.
func ArticlesTable(articles []news.ProcessedArticle) Table {
	t := Table{Headers: []string{"Published", "Source", "Category", "Sentiment", "Title"}}
	for _, a := range articles {
		published := "-"
		if a.PublishedAt != nil {
			published = a.PublishedAt.UTC().Format(dateLayout)
		}
		t.Rows = append(t.Rows, []string{
			published,
			a.Source,
			CategoryLabel(a.Category),
			fmt.Sprintf("%+.2f", a.Sentiment),
			a.Title,
		})
	}
	return t
}

// StoredNewsTable lists rows read back from the store.
func StoredNewsTable(items []storage.StoredNews) Table {
	t := Table{Headers: []string{"Published", "Source", "Category", "Sentiment", "Title"}}
	for _, n := range items {
		published := "-"
		if n.PublishedAt != nil {
			published = n.PublishedAt.UTC().Format(dateLayout)
		}
		t.Rows = append(t.Rows, []string{
			published,
			n.Source,
			CategoryLabel(n.Category),
			fmt.Sprintf("%+.2f", n.Sentiment),
			n.Title,
		})
	}
	return t
}

// PairsTable lists duplicate candidates.
func PairsTable(pairs []dupes.Pair) Table {
	t := Table{Headers: []string{"Name", "Contained in", "Ratio"}}
	for _, p := range pairs {
		t.Rows = append(t.Rows, []string{p.Shorter, p.Longer, fmt.Sprintf("%.2f", p.Ratio)})
	}
	return t
}

// FindingsTable lists known-variant audit findings.
func FindingsTable(findings []dupes.Finding) Table {
	t := Table{Headers: []string{"Canonical", "Problem", "Variants"}}
	for _, f := range findings {
		problem := "canonical stored next to aliases"
		if f.Kind == dupes.MultipleAliases {
			problem = "several aliases, no canonical"
		}
		t.Rows = append(t.Rows, []string{f.Canonical, problem, strings.Join(f.Variants, ", ")})
	}
	return t
}

func topCategory(s news.TeamSummary) string {
	best, bestCount := news.Category(""), 0
	for _, cat := range news.Categories {
		if n := s.CategoryCount(cat); n > bestCount {
			best, bestCount = cat, n
		}
	}
	if bestCount == 0 {
		return "-"
	}
	return fmt.Sprintf("%s (%d)", CategoryLabel(best), bestCount)
}
