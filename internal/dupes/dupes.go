// Package dupes proposes likely duplicate team names for human review.
// Nothing here writes to the store.
package dupes

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"pitchside/internal/teams"
)

// DefaultMinLen is the rune count both names must exceed.
const DefaultMinLen = 3

// Pair is a candidate duplicate. Shorter is the name contained in Longer;
// Ratio is their folded length ratio in (0, 1].
type Pair struct {
	Shorter string  `json:"shorter"`
	Longer  string  `json:"longer"`
	Ratio   float64 `json:"ratio"`
}

// Fold lower-cases s with Unicode case folding and strips diacritics, so
// "Atlético" and "ATLETICO" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(strings.TrimSpace(stripped))
}

// Propose returns every pair of distinct names where one folded name is a
// substring of the other and both names have more than minLen runes.
// Pairs are ordered by descending ratio, then lexicographically.
func Propose(names []string, minLen int) []Pair {
	if minLen < 0 {
		minLen = DefaultMinLen
	}

	type entry struct {
		name   string
		folded string
		length int
	}
	uniq := make(map[string]struct{}, len(names))
	var list []entry
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := uniq[n]; ok {
			continue
		}
		uniq[n] = struct{}{}
		if utf8.RuneCountInString(n) <= minLen {
			continue
		}
		f := Fold(n)
		list = append(list, entry{name: n, folded: f, length: utf8.RuneCountInString(f)})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].name < list[j].name })

	var pairs []Pair
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			a, b := list[i], list[j]
			if b.length < a.length || (b.length == a.length && b.name < a.name) {
				a, b = b, a
			}
			if b.length == 0 || !strings.Contains(b.folded, a.folded) {
				continue
			}
			pairs = append(pairs, Pair{
				Shorter: a.name,
				Longer:  b.name,
				Ratio:   float64(a.length) / float64(b.length),
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Ratio != pairs[j].Ratio {
			return pairs[i].Ratio > pairs[j].Ratio
		}
		if pairs[i].Shorter != pairs[j].Shorter {
			return pairs[i].Shorter < pairs[j].Shorter
		}
		return pairs[i].Longer < pairs[j].Longer
	})
	return pairs
}

// FindingKind classifies an audit finding.
type FindingKind string

const (
	// CanonicalWithAliases: the canonical name is stored next to alias
	// spellings of itself.
	CanonicalWithAliases FindingKind = "canonical_with_aliases"
	// MultipleAliases: the canonical is absent but more than one alias
	// spelling is stored.
	MultipleAliases FindingKind = "multiple_aliases"
)

// Finding is a known variant problem found by Audit.
type Finding struct {
	Kind      FindingKind `json:"kind"`
	Canonical string      `json:"canonical"`
	Variants  []string    `json:"variants"`
}

// Audit checks names against the registry's known aliases. Findings
// follow the registry's declaration order.
func Audit(names []string, reg *teams.Registry) []Finding {
	present := make(map[string]struct{}, len(names))
	for _, n := range names {
		present[strings.TrimSpace(n)] = struct{}{}
	}

	var findings []Finding
	for _, team := range reg.All() {
		var variants []string
		for _, alias := range team.Aliases {
			if alias == team.Canonical {
				continue
			}
			if _, ok := present[alias]; ok {
				variants = append(variants, alias)
			}
		}
		_, hasCanonical := present[team.Canonical]
		switch {
		case hasCanonical && len(variants) > 0:
			findings = append(findings, Finding{Kind: CanonicalWithAliases, Canonical: team.Canonical, Variants: variants})
		case !hasCanonical && len(variants) > 1:
			findings = append(findings, Finding{Kind: MultipleAliases, Canonical: team.Canonical, Variants: variants})
		}
	}
	return findings
}
