// Package matcher decides whether an article is genuinely about a team.
package matcher

import (
	"pitchside/internal/news"
	"pitchside/internal/teams"
	"pitchside/internal/textscan"
)

// DefaultWindow is the number of runes after an occurrence inspected for
// confusable suffixes.
const DefaultWindow = 16

// Matcher holds the folded terms and suffixes of one team.
type Matcher struct {
	team     string
	terms    []string
	suffixes []string
	window   int
}

func New(team teams.CanonicalTeam, window int) *Matcher {
	if window <= 0 {
		window = DefaultWindow
	}
	m := &Matcher{team: team.Canonical, window: window}
	for _, term := range team.Terms() {
		m.terms = append(m.terms, textscan.Fold(term))
	}
	for _, suffix := range team.ConfusableSuffixes {
		if suffix == "" {
			continue
		}
		m.suffixes = append(m.suffixes, textscan.Fold(suffix))
	}
	return m
}

// Team returns the canonical name the matcher was built for.
func (m *Matcher) Team() string { return m.team }

// Matches reports whether text mentions the team. Every occurrence of
// every term is considered; an occurrence followed by a confusable suffix
// is rejected on its own and does not hide later occurrences.
func (m *Matcher) Matches(text string) bool {
	_, ok := m.FirstMatch(text)
	return ok
}

// FirstMatch returns the first term whose occurrence was accepted.
func (m *Matcher) FirstMatch(text string) (string, bool) {
	folded := textscan.Fold(text)
	for _, term := range m.terms {
		for _, span := range textscan.Find(folded, term) {
			if m.suppressed(folded, span.End) {
				continue
			}
			return term, true
		}
	}
	return "", false
}

// Filter keeps the articles whose title and body mention the team, in
// input order.
func (m *Matcher) Filter(articles []news.RawArticle) []news.RawArticle {
	var kept []news.RawArticle
	for _, a := range articles {
		if m.Matches(a.Text()) {
			kept = append(kept, a)
		}
	}
	return kept
}

// suppressed reports whether a confusable suffix lies wholly inside the
// window that starts at end.
func (m *Matcher) suppressed(folded string, end int) bool {
	if len(m.suffixes) == 0 {
		return false
	}
	following := folded[end:]
	limit := len(textscan.Window(folded, end, m.window))
	for _, suffix := range m.suffixes {
		for _, span := range textscan.Find(following, suffix) {
			if span.Start >= limit {
				break
			}
			if span.End <= limit {
				return true
			}
		}
	}
	return false
}
