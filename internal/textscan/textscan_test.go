package textscan

import "testing"

func TestFindRespectsBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		term string
		want int
	}{
		{"a smart move", "art", 0},
		{"art for art's sake", "art", 2},
		{"arsenal's defence", "arsenal", 1},
		{"inter-city derby", "inter", 1},
		{"international break", "inter", 0},
		{"ruled out, then out again", "ruled out", 1},
		{"bodø/glimt stun the champions", "bodø/glimt", 1},
		{"fc københavn", "københavn", 1},
		{"brighton & hove albion", "brighton & hove albion", 1},
		{"nott'm forest", "nott'm forest", 1},
		{"", "inter", 0},
		{"inter", "", 0},
	}

	for _, tc := range cases {
		got := Find(tc.text, tc.term)
		if len(got) != tc.want {
			t.Fatalf("Find(%q, %q): expected %d occurrences, got %d (%v)", tc.text, tc.term, tc.want, len(got), got)
		}
	}
}

func TestFindAfterRejectedCandidate(t *testing.T) {
	t.Parallel()

	spans := Find("interinter inter", "inter")
	if len(spans) != 1 {
		t.Fatalf("expected only the standalone token, got %v", spans)
	}
	if spans[0].Start != 11 {
		t.Fatalf("expected occurrence at 11, got %d", spans[0].Start)
	}
}

func TestPunctuationEdgesSkipBoundaryCheck(t *testing.T) {
	t.Parallel()

	if !Contains("inter-city", "-city") {
		t.Fatalf("expected leading punctuation term to match inside a compound")
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	text := Fold("Inter Miami sign another veteran")
	spans := Find(text, "inter")
	if len(spans) != 1 {
		t.Fatalf("expected one occurrence, got %v", spans)
	}
	if got := Window(text, spans[0].End, 6); got != " miami" {
		t.Fatalf("expected window %q, got %q", " miami", got)
	}
	if got := Window(text, len(text), 6); got != "" {
		t.Fatalf("expected empty window at end, got %q", got)
	}
	if got := Window("bodø", 2, 5); got != "dø" {
		t.Fatalf("expected rune-aware window, got %q", got)
	}
}
