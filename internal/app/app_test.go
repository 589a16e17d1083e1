package app

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"pitchside/internal/teams"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"predict"}); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if code := Run(nil); code != 2 {
		t.Fatalf("expected exit code 2 without a command, got %d", code)
	}
	if code := Run([]string{"help"}); code != 0 {
		t.Fatalf("expected exit code 0 for help, got %d", code)
	}
}

func TestScrapeFlagsValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		flags scrapeFlags
		ok    bool
	}{
		{name: "team", flags: scrapeFlags{team: "Inter"}, ok: true},
		{name: "match", flags: scrapeFlags{match: "Milan,Inter"}, ok: true},
		{name: "all", flags: scrapeFlags{all: true, limit: 5}, ok: true},
		{name: "none", flags: scrapeFlags{}},
		{name: "two modes", flags: scrapeFlags{team: "Inter", all: true}},
		{name: "negative limit", flags: scrapeFlags{team: "Inter", limit: -1}},
		{name: "one sided match", flags: scrapeFlags{match: "Milan,"}},
	}
	for _, tc := range cases {
		err := tc.flags.validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
	}
}

func TestParseMatch(t *testing.T) {
	t.Parallel()

	home, away, err := parseMatch(" AC Milan , Inter ")
	if err != nil {
		t.Fatalf("parseMatch failed: %v", err)
	}
	if home != "AC Milan" || away != "Inter" {
		t.Fatalf("expected AC Milan/Inter, got %q/%q", home, away)
	}
	for _, raw := range []string{"Inter", "a,b,c", "Inter,inter", ","} {
		if _, _, err := parseMatch(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestPurgeTarget(t *testing.T) {
	t.Parallel()

	words, team, err := purgeTarget("", "")
	if err != nil || team != "" || len(words) != len(defaultPurgeKeywords) {
		t.Fatalf("expected default keywords, got %v %q %v", words, team, err)
	}
	words[0] = "changed"
	if defaultPurgeKeywords[0] == "changed" {
		t.Fatalf("expected a copy of the default list")
	}

	words, _, err = purgeTarget(" tennis, ,nba ", "")
	if err != nil || len(words) != 2 || words[1] != "nba" {
		t.Fatalf("expected two keywords, got %v (%v)", words, err)
	}

	_, team, err = purgeTarget("", "Inter Miami")
	if err != nil || team != "Inter Miami" {
		t.Fatalf("expected team purge, got %q (%v)", team, err)
	}

	if _, _, err := purgeTarget("tennis", "Inter"); err == nil {
		t.Fatalf("expected both flags to be rejected")
	}
	if _, _, err := purgeTarget(" , ", ""); err == nil {
		t.Fatalf("expected blank keyword list to be rejected")
	}
}

func TestResolveTeam(t *testing.T) {
	t.Parallel()

	reg, err := teams.Load("")
	if err != nil {
		t.Fatalf("load teams: %v", err)
	}

	team, err := resolveTeam(reg, "Internazionale", zerolog.Nop())
	if err != nil || team.Canonical != "Inter" {
		t.Fatalf("expected alias to resolve to Inter, got %q (%v)", team.Canonical, err)
	}

	team, err = resolveTeam(reg, "Dorking Wanderers", zerolog.Nop())
	if err != nil || team.Canonical != "Dorking Wanderers" || len(team.Aliases) != 0 {
		t.Fatalf("expected bare team for unknown name, got %+v (%v)", team, err)
	}

	if _, err := resolveTeam(reg, "  ", zerolog.Nop()); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
}

func setTestEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("PITCHSIDE_ENV_FILE", "")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CACHE_DIR", t.TempDir())
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("SOURCES_FILE", "")
	t.Setenv("TEAMS_FILE", "")
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestScrapeRequiresStoreCredentials(t *testing.T) {
	envFile := setTestEnv(t)

	if code := Run([]string{"scrape", "--env", envFile, "--team", "Inter"}); code != 1 {
		t.Fatalf("expected exit code 1 without DB_HOST, got %d", code)
	}
}

func TestScrapeRejectsMissingTeamsFile(t *testing.T) {
	envFile := setTestEnv(t)
	t.Setenv("TEAMS_FILE", filepath.Join(t.TempDir(), "teams.yaml"))

	if code := Run([]string{"scrape", "--env", envFile, "--dry-run", "--team", "Inter"}); code != 1 {
		t.Fatalf("expected exit code 1 for a missing teams file, got %d", code)
	}
}

func TestNormalizeDryRunNeedsNoStore(t *testing.T) {
	envFile := setTestEnv(t)

	if code := Run([]string{"normalize", "--env", envFile, "--dry-run"}); code != 0 {
		t.Fatalf("expected dry run to succeed without a store, got %d", code)
	}
}

func TestPurgeRejectsInvalidConfig(t *testing.T) {
	envFile := setTestEnv(t)
	t.Setenv("CACHE_TTL", "0s")

	if code := Run([]string{"purge", "--env", envFile, "--team", "Inter"}); code != 1 {
		t.Fatalf("expected exit code 1 for invalid config, got %d", code)
	}
}
