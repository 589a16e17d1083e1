// Package summary reduces a batch of processed articles into a TeamSummary.
package summary

import (
	"time"

	"pitchside/internal/news"
)

const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2
)

// Summarize builds a fresh summary for one batch. Every category label is
// present in CategoryCounts. An empty batch yields zero counts and a mean
// sentiment of exactly 0.
func Summarize(teamID string, articles []news.ProcessedArticle) news.TeamSummary {
	return SummarizeAt(teamID, articles, time.Now().UTC())
}

// SummarizeAt is Summarize with an explicit generation time.
func SummarizeAt(teamID string, articles []news.ProcessedArticle, at time.Time) news.TeamSummary {
	s := news.TeamSummary{
		TeamID:         teamID,
		ArticleCount:   len(articles),
		CategoryCounts: make(map[news.Category]int, len(news.Categories)),
		Entities:       []news.EntityMention{},
		GeneratedAt:    at,
	}
	for _, cat := range news.Categories {
		s.CategoryCounts[cat] = 0
	}
	if len(articles) == 0 {
		return s
	}

	var sentimentSum, reliabilitySum float64
	order := make([]string, 0)
	entities := make(map[string]news.EntityMention)

	for _, a := range articles {
		sentimentSum += a.Sentiment
		reliabilitySum += a.Reliability
		switch {
		case a.Sentiment > positiveThreshold:
			s.PositiveCount++
		case a.Sentiment < negativeThreshold:
			s.NegativeCount++
		}

		cat := a.Category
		if !cat.Valid() {
			cat = news.CategoryOther
		}
		s.CategoryCounts[cat]++

		for _, e := range a.Entities {
			if _, seen := entities[e.Name]; !seen {
				order = append(order, e.Name)
			}
			entities[e.Name] = e
		}
	}

	n := float64(len(articles))
	s.MeanSentiment = sentimentSum / n
	s.MeanReliability = reliabilitySum / n
	for _, name := range order {
		s.Entities = append(s.Entities, entities[name])
	}
	return s
}
