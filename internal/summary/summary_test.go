package summary

import (
	"math"
	"testing"
	"time"

	"pitchside/internal/news"
)

func TestSummarizeEmptyBatch(t *testing.T) {
	t.Parallel()

	s := Summarize("Inter", nil)
	if s.ArticleCount != 0 || s.PositiveCount != 0 || s.NegativeCount != 0 {
		t.Fatalf("expected zero counts, got %+v", s)
	}
	if s.MeanSentiment != 0.0 || math.IsNaN(s.MeanSentiment) {
		t.Fatalf("expected mean sentiment exactly 0, got %v", s.MeanSentiment)
	}
	if s.MeanReliability != 0.0 {
		t.Fatalf("expected mean reliability 0, got %v", s.MeanReliability)
	}
	for _, cat := range news.Categories {
		if count, ok := s.CategoryCounts[cat]; !ok || count != 0 {
			t.Fatalf("expected zero-filled %s, got %d (present=%t)", cat, count, ok)
		}
	}
	if s.Entities == nil {
		t.Fatalf("expected empty, non-nil entity list")
	}
}

func TestSummarizeBatch(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	articles := []news.ProcessedArticle{
		{
			RawArticle: news.RawArticle{URL: "a", Reliability: 0.9},
			Category:   news.CategoryInjury,
			Sentiment:  -0.8,
			Entities:   []news.EntityMention{{Name: "Lautaro", Team: "Inter", Role: "forward", Importance: 0.5}},
		},
		{
			RawArticle: news.RawArticle{URL: "b", Reliability: 0.7},
			Category:   news.CategoryForm,
			Sentiment:  0.5,
			Entities: []news.EntityMention{
				{Name: "Barella", Team: "Inter", Role: "midfielder", Importance: 0.85},
				{Name: "Lautaro", Team: "Inter", Role: "forward", Importance: 0.92},
			},
		},
		{
			RawArticle: news.RawArticle{URL: "c", Reliability: 0.8},
			Category:   news.CategoryForm,
			Sentiment:  0.1,
		},
	}

	s := SummarizeAt("Inter", articles, at)

	if s.ArticleCount != 3 {
		t.Fatalf("expected 3 articles, got %d", s.ArticleCount)
	}
	if math.Abs(s.MeanSentiment-(-0.2/3)) > 1e-9 {
		t.Fatalf("unexpected mean sentiment %v", s.MeanSentiment)
	}
	if math.Abs(s.MeanReliability-0.8) > 1e-9 {
		t.Fatalf("unexpected mean reliability %v", s.MeanReliability)
	}
	if s.PositiveCount != 1 || s.NegativeCount != 1 {
		t.Fatalf("expected 1 positive and 1 negative, got %d/%d", s.PositiveCount, s.NegativeCount)
	}
	if s.CategoryCount(news.CategoryForm) != 2 || s.CategoryCount(news.CategoryInjury) != 1 || s.CategoryCount(news.CategoryCoach) != 0 {
		t.Fatalf("unexpected category counts %v", s.CategoryCounts)
	}
	if len(s.Entities) != 2 {
		t.Fatalf("expected 2 deduplicated entities, got %+v", s.Entities)
	}
	if s.Entities[0].Name != "Lautaro" || s.Entities[0].Importance != 0.92 {
		t.Fatalf("expected first-seen order with last-seen attributes, got %+v", s.Entities[0])
	}
	if !s.GeneratedAt.Equal(at) {
		t.Fatalf("expected generation time %v, got %v", at, s.GeneratedAt)
	}
}

func TestSummarizeReturnsFreshSnapshots(t *testing.T) {
	t.Parallel()

	batch := []news.ProcessedArticle{{Category: news.CategoryCoach, Sentiment: 0.3}}
	first := Summarize("Milan", batch)
	second := Summarize("Milan", batch)

	second.CategoryCounts[news.CategoryCoach] = 99
	if first.CategoryCount(news.CategoryCoach) != 1 {
		t.Fatalf("expected summaries not to share state")
	}
}
