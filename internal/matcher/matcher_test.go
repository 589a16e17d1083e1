package matcher

import (
	"testing"

	"pitchside/internal/news"
	"pitchside/internal/teams"
)

var inter = teams.CanonicalTeam{
	Canonical:          "Inter",
	Aliases:            []string{"Internazionale", "Inter Milan"},
	Mentions:           []string{"Nerazzurri"},
	Players:            []teams.Player{{Name: "Lautaro", Role: "forward", Importance: 0.9}},
	ConfusableSuffixes: []string{" miami", "-miami", " turku", " club d'escaldes"},
}

func TestMatchesRespectsWordBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		team teams.CanonicalTeam
		text string
		want bool
	}{
		{"substring inside word", teams.CanonicalTeam{Canonical: "Art"}, "A smart move by the board", false},
		{"possessive", teams.CanonicalTeam{Canonical: "Arsenal"}, "Arsenal's defence held firm", true},
		{"case insensitive", teams.CanonicalTeam{Canonical: "Arsenal"}, "ARSENAL WIN", true},
		{"prefix of longer word", inter, "International break ahead", false},
		{"alias", inter, "Internazionale confirm signing", true},
		{"mention", inter, "The Nerazzurri travel to Rome", true},
		{"player surname", inter, "Lautaro scores twice", true},
		{"punctuation boundary", teams.CanonicalTeam{Canonical: "Milan"}, "(Milan) lose", true},
		{"digit adjacent", teams.CanonicalTeam{Canonical: "PSV"}, "PSV2 reserves", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := New(tt.team, DefaultWindow).Matches(tt.text); got != tt.want {
				t.Fatalf("Matches(%q) = %t, want %t", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatchesSuppressesConfusableOccurrence(t *testing.T) {
	t.Parallel()

	m := New(inter, DefaultWindow)

	if m.Matches("Inter Miami sign another veteran") {
		t.Fatalf("expected Inter Miami alone not to match")
	}
	if m.Matches("FC Inter Turku top the table") {
		t.Fatalf("expected Inter Turku alone not to match")
	}
	if m.Matches("Inter Club d'Escaldes qualify") {
		t.Fatalf("expected suffix filling the whole window to suppress")
	}
}

func TestMatchesAcceptsLaterOccurrence(t *testing.T) {
	t.Parallel()

	m := New(inter, DefaultWindow)
	text := "Inter Miami were linked with the striker, but Inter are favourites to land him"

	term, ok := m.FirstMatch(text)
	if !ok {
		t.Fatalf("expected the second, unsuppressed occurrence to match")
	}
	if term != "inter" {
		t.Fatalf("expected match on canonical term, got %q", term)
	}
}

func TestSuffixOutsideWindowDoesNotSuppress(t *testing.T) {
	t.Parallel()

	m := New(inter, 8)
	if !m.Matches("Inter won again before facing Miami") {
		t.Fatalf("expected suffix far from the occurrence to be ignored")
	}
}

func TestSuffixNeedsOwnBoundary(t *testing.T) {
	t.Parallel()

	team := teams.CanonicalTeam{Canonical: "Barcelona", ConfusableSuffixes: []string{" sc"}}
	m := New(team, DefaultWindow)

	if !m.Matches("Barcelona scored three") {
		t.Fatalf("expected ' sc' not to suppress inside 'scored'")
	}
	if m.Matches("Barcelona SC draw") {
		t.Fatalf("expected ' sc' to suppress Barcelona SC")
	}
}

// Suffixes only look forward, so a term embedded in another club's name
// after a leading word still matches. Both sides of an Inter-Milan fixture
// see "Inter Milan" articles.
func TestPrecedingWordIsNotSuppressed(t *testing.T) {
	t.Parallel()

	milan := teams.CanonicalTeam{Canonical: "Milan", Aliases: []string{"AC Milan"}, ConfusableSuffixes: []string{" futuro", " fashion"}}
	text := "Inter Milan beat Roma 2-0 at San Siro"

	if !New(milan, DefaultWindow).Matches(text) {
		t.Fatalf("expected Milan to match inside Inter Milan")
	}
	if !New(inter, DefaultWindow).Matches(text) {
		t.Fatalf("expected Inter to match Inter Milan")
	}
	if New(milan, DefaultWindow).Matches("Milan fashion week opens") {
		t.Fatalf("expected trailing suffix to suppress Milan")
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	t.Parallel()

	articles := []news.RawArticle{
		{Title: "Roma news", URL: "1"},
		{Title: "Transfer", Body: "Lautaro extends contract", URL: "2"},
		{Title: "Inter Miami again", URL: "3"},
		{Title: "Inter injury update", URL: "4"},
	}

	kept := New(inter, DefaultWindow).Filter(articles)
	if len(kept) != 2 || kept[0].URL != "2" || kept[1].URL != "4" {
		t.Fatalf("unexpected filter result %+v", kept)
	}
}
