// Package news holds the article and summary records that flow through
// the pipeline. Values are created once and never mutated afterwards.
package news

import "time"

// Category is a topic label from a fixed, closed set.
type Category string

const (
	CategoryInjury     Category = "injury"
	CategorySuspension Category = "suspension"
	CategoryTransfer   Category = "transfer"
	CategoryForm       Category = "form"
	CategoryMotivation Category = "motivation"
	CategoryCoach      Category = "coach"
	CategoryOther      Category = "other"
)

// Categories lists every label in the order used for tie breaking:
// earlier labels win equal scores. CategoryOther is last.
var Categories = []Category{
	CategoryInjury,
	CategorySuspension,
	CategoryCoach,
	CategoryTransfer,
	CategoryForm,
	CategoryMotivation,
	CategoryOther,
}

// Valid reports whether c is one of the fixed labels.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// RawArticle is a fetched item as returned by a source.
type RawArticle struct {
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Source       string     `json:"source"`
	PublishedRaw string     `json:"published_raw,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	Body         string     `json:"body,omitempty"`
	Reliability  float64    `json:"reliability"`
	ScrapedAt    time.Time  `json:"scraped_at"`
}

// Text is the title and body joined, the input for matching and
// classification.
func (a RawArticle) Text() string {
	if a.Body == "" {
		return a.Title
	}
	return a.Title + " " + a.Body
}

// EntityMention is a notable person referenced by an article.
type EntityMention struct {
	Name       string  `json:"name"`
	Team       string  `json:"team"`
	Role       string  `json:"role"`
	Importance float64 `json:"importance"`
}

// ProcessedArticle is a RawArticle that passed the mention matcher and was
// classified for one team.
type ProcessedArticle struct {
	RawArticle
	TeamID         string          `json:"team_id"`
	Category       Category        `json:"category"`
	Sentiment      float64         `json:"sentiment"`
	Confidence     float64         `json:"confidence"`
	Entities       []EntityMention `json:"entities,omitempty"`
	ImpactKeywords []string        `json:"impact_keywords,omitempty"`
}

// TeamSummary is an immutable snapshot computed from one batch of
// processed articles.
type TeamSummary struct {
	TeamID          string           `json:"team_id"`
	ArticleCount    int              `json:"article_count"`
	MeanSentiment   float64          `json:"mean_sentiment"`
	MeanReliability float64          `json:"mean_reliability"`
	PositiveCount   int              `json:"positive_count"`
	NegativeCount   int              `json:"negative_count"`
	CategoryCounts  map[Category]int `json:"category_counts"`
	Entities        []EntityMention  `json:"entities"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// CategoryCount returns the count for c, zero for unknown labels.
func (s TeamSummary) CategoryCount(c Category) int {
	return s.CategoryCounts[c]
}
