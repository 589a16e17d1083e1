package classify

import (
	"math"
	"testing"

	"pitchside/internal/news"
	"pitchside/internal/teams"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	c := Default()
	tests := []struct {
		name       string
		text       string
		category   news.Category
		sentiment  float64
		confidence float64
	}{
		{"injury prior", "Smith ruled out with hamstring injury", news.CategoryInjury, -0.8, 1},
		{"suspension prior", "Defender banned after red card", news.CategorySuspension, -0.75, 2.0 / 3},
		{"tie goes to coach over transfer", "The manager signs autographs", news.CategoryCoach, 0, 1.0 / 3},
		{"no keywords", "Stadium tours resume next week", news.CategoryOther, 0, 0.3},
		{"positive words", "Brilliant victory as Inter won", news.CategoryOther, 0.75, 0.3},
		{"repeated word counted once", "win win win", news.CategoryOther, 0.25, 0.3},
		{"mixed words cancel", "A win but a crisis", news.CategoryOther, 0, 0.3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := c.Classify(tt.text)
			if got.Category != tt.category {
				t.Fatalf("expected category %s, got %s", tt.category, got.Category)
			}
			if math.Abs(got.Sentiment-tt.sentiment) > 1e-9 {
				t.Fatalf("expected sentiment %.3f, got %.3f", tt.sentiment, got.Sentiment)
			}
			if math.Abs(got.Confidence-tt.confidence) > 1e-9 {
				t.Fatalf("expected confidence %.3f, got %.3f", tt.confidence, got.Confidence)
			}
		})
	}
}

func TestInjuryPriorIgnoresPositiveTable(t *testing.T) {
	t.Parallel()

	tables := DefaultTables()
	tables.Positive = []string{"smith", "with", "ruled", "hamstring"}
	tables.Negative = nil

	got := New(tables).Classify("Smith ruled out with hamstring injury")
	if got.Category != news.CategoryInjury {
		t.Fatalf("expected injury, got %s", got.Category)
	}
	if got.Sentiment > -0.7 {
		t.Fatalf("expected sentiment <= -0.7, got %.2f", got.Sentiment)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	c := Default()
	text := "Derby crucial for the coach as transfer deal stalls and the striker is injured"
	first := c.Classify(text)
	for i := 0; i < 50; i++ {
		if got := c.Classify(text); got != first {
			t.Fatalf("run %d: expected %+v, got %+v", i, first, got)
		}
	}
}

func TestSentimentIsClamped(t *testing.T) {
	t.Parallel()

	tables := DefaultTables()
	tables.WordWeight = 0.6
	got := New(tables).Classify("win won victory beat success")
	if got.Sentiment != 1 {
		t.Fatalf("expected clamp at 1, got %.2f", got.Sentiment)
	}
}

func TestKeywordsRespectBoundaries(t *testing.T) {
	t.Parallel()

	// "ban" must not fire inside "urban", "out" not inside "outlook".
	got := Default().Classify("Urban outlook for the club")
	if got.Category != news.CategoryOther {
		t.Fatalf("expected other, got %s", got.Category)
	}
}

func TestImpactKeywords(t *testing.T) {
	t.Parallel()

	got := Default().ImpactKeywords("Lautaro back in training and FULLY FIT for Sunday")
	want := []string{"back in training", "fully fit"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestProcessAttachesEntities(t *testing.T) {
	t.Parallel()

	team := teams.CanonicalTeam{
		Canonical: "Inter",
		Players: []teams.Player{
			{Name: "Lautaro", Role: "forward", Importance: 0.92},
			{Name: "Barella", Role: "midfielder", Importance: 0.85},
		},
	}
	raw := news.RawArticle{Title: "Lautaro ruled out", Body: "Knee problem for the captain", URL: "u", Reliability: 0.8}

	got := Default().Process(raw, team)
	if got.TeamID != "Inter" || got.Category != news.CategoryInjury {
		t.Fatalf("unexpected processed article %+v", got)
	}
	if len(got.Entities) != 1 || got.Entities[0].Name != "Lautaro" || got.Entities[0].Team != "Inter" {
		t.Fatalf("expected Lautaro entity, got %+v", got.Entities)
	}
	if len(got.ImpactKeywords) != 1 || got.ImpactKeywords[0] != "ruled out" {
		t.Fatalf("expected ruled out impact keyword, got %v", got.ImpactKeywords)
	}
	if got.URL != "u" || got.Reliability != 0.8 {
		t.Fatalf("expected raw fields carried over, got %+v", got.RawArticle)
	}
}
