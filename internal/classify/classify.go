// Package classify labels article text with a topic category and a
// sentiment score using fixed keyword tables. Results depend only on the
// text and the tables.
package classify

import (
	"pitchside/internal/news"
	"pitchside/internal/teams"
	"pitchside/internal/textscan"
)

const (
	// fallbackConfidence is reported for text that hits no category.
	fallbackConfidence = 0.3
	injuryPrior        = -0.8
	suspensionPrior    = -0.75
	defaultWordWeight  = 0.25
)

// Tables are the keyword lists a Classifier is built from.
type Tables struct {
	Keywords      map[news.Category][]string
	Positive      []string
	Negative      []string
	WordWeight    float64
	ImpactPhrases []string
}

// DefaultTables returns the built-in keyword tables.
func DefaultTables() Tables {
	return Tables{
		Keywords: map[news.Category][]string{
			news.CategoryInjury: {
				"injury", "injured", "hurt", "sidelined", "out", "ruled out",
				"hamstring", "knee", "ankle", "muscle", "strain", "sprain",
				"surgery", "recovery", "rehabilitation", "fitness doubt",
			},
			news.CategorySuspension: {
				"suspended", "suspension", "ban", "banned", "red card",
				"yellow cards", "accumulated", "sent off", "dismissed",
			},
			news.CategoryTransfer: {
				"transfer", "signing", "signs", "loan", "loaned", "deal",
				"agreement", "contract", "extends", "renewal", "joins",
			},
			news.CategoryForm: {
				"form", "winning streak", "losing streak", "unbeaten",
				"consecutive", "great form", "poor form", "struggling",
				"dominant", "impressive", "disappointing",
			},
			news.CategoryMotivation: {
				"derby", "rivalry", "crucial", "must-win", "battle",
				"relegation", "title race", "champions league", "european",
				"revenge", "payback", "historic",
			},
			news.CategoryCoach: {
				"manager", "coach", "sacked", "fired", "appointed",
				"interim", "replacement", "tactics", "system",
			},
		},
		Positive: []string{
			"win", "won", "victory", "beat", "success", "brilliant", "excellent",
			"outstanding", "impressive", "dominant", "recover", "return", "fit",
			"confident", "optimistic", "boost",
		},
		Negative: []string{
			"lose", "lost", "defeat", "beaten", "fail", "poor", "disappointing",
			"struggle", "crisis", "injury", "injured", "miss", "out", "doubt",
			"concern", "worry", "suspended", "banned", "sacked",
		},
		WordWeight: defaultWordWeight,
		ImpactPhrases: []string{
			"ruled out", "doubtful", "expected to start", "back in training",
			"fully fit", "race against time", "touch and go",
			"latest signing", "new signing", "deadline day",
			"winning run", "losing streak", "unbeaten", "without a win",
		},
	}
}

// Result is the outcome of classifying one text.
type Result struct {
	Category   news.Category
	Sentiment  float64
	Confidence float64
}

type Classifier struct {
	keywords map[news.Category][]string
	positive []string
	negative []string
	weight   float64
	impact   []string
}

// New folds and deduplicates the tables. The tables are not referenced
// after New returns.
func New(t Tables) *Classifier {
	c := &Classifier{
		keywords: make(map[news.Category][]string, len(t.Keywords)),
		positive: foldAll(t.Positive),
		negative: foldAll(t.Negative),
		weight:   t.WordWeight,
		impact:   foldAll(t.ImpactPhrases),
	}
	if c.weight <= 0 {
		c.weight = defaultWordWeight
	}
	for cat, words := range t.Keywords {
		if cat == news.CategoryOther || !cat.Valid() {
			continue
		}
		c.keywords[cat] = foldAll(words)
	}
	return c
}

// Default builds a Classifier over DefaultTables.
func Default() *Classifier {
	return New(DefaultTables())
}

// Classify scores text against every category. Each keyword counts once.
// Equal scores go to the category listed first in news.Categories.
func (c *Classifier) Classify(text string) Result {
	folded := textscan.Fold(text)

	best := news.CategoryOther
	bestScore := 0
	for _, cat := range news.Categories {
		score := countPresent(folded, c.keywords[cat])
		if score > bestScore {
			best, bestScore = cat, score
		}
	}

	res := Result{Category: best, Confidence: fallbackConfidence}
	if bestScore > 0 {
		res.Confidence = min(1, float64(bestScore)/3)
	}
	res.Sentiment = c.sentiment(folded, best)
	return res
}

// Sentiment scores text on its own, without the category priors.
func (c *Classifier) Sentiment(text string) float64 {
	return c.sentiment(textscan.Fold(text), news.CategoryOther)
}

func (c *Classifier) sentiment(folded string, cat news.Category) float64 {
	switch cat {
	case news.CategoryInjury:
		return injuryPrior
	case news.CategorySuspension:
		return suspensionPrior
	}
	pos := countPresent(folded, c.positive)
	neg := countPresent(folded, c.negative)
	return clamp(float64(pos-neg)*c.weight, -1, 1)
}

// ImpactKeywords returns the impact phrases present in text, in table
// order.
func (c *Classifier) ImpactKeywords(text string) []string {
	folded := textscan.Fold(text)
	var out []string
	for _, phrase := range c.impact {
		if textscan.Contains(folded, phrase) {
			out = append(out, phrase)
		}
	}
	return out
}

// Entities returns the team's configured players mentioned in text, in
// table order.
func (c *Classifier) Entities(text string, team teams.CanonicalTeam) []news.EntityMention {
	folded := textscan.Fold(text)
	var out []news.EntityMention
	for _, p := range team.Players {
		if p.Name == "" || !textscan.Contains(folded, textscan.Fold(p.Name)) {
			continue
		}
		out = append(out, news.EntityMention{
			Name:       p.Name,
			Team:       team.Canonical,
			Role:       p.Role,
			Importance: p.Importance,
		})
	}
	return out
}

// Process classifies a raw article for team.
func (c *Classifier) Process(raw news.RawArticle, team teams.CanonicalTeam) news.ProcessedArticle {
	text := raw.Text()
	res := c.Classify(text)
	return news.ProcessedArticle{
		RawArticle:     raw,
		TeamID:         team.Canonical,
		Category:       res.Category,
		Sentiment:      res.Sentiment,
		Confidence:     res.Confidence,
		Entities:       c.Entities(text, team),
		ImpactKeywords: c.ImpactKeywords(text),
	}
}

func countPresent(folded string, words []string) int {
	n := 0
	for _, w := range words {
		if textscan.Contains(folded, w) {
			n++
		}
	}
	return n
}

func foldAll(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		f := textscan.Fold(w)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
