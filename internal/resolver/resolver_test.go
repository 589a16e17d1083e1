package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"pitchside/internal/storage"
	"pitchside/internal/teams"
)

type fixture struct {
	home, away string
}

// memoryStore mimics the matches table, including the fixture unique key.
type memoryStore struct {
	rows    []fixture
	fail    map[string]error
	renames int
}

func (m *memoryStore) RenameTeam(_ context.Context, column storage.TeamColumn, from, to string) (int64, error) {
	m.renames++
	if err, ok := m.fail[from+"/"+string(column)]; ok {
		return 0, err
	}
	var n int64
	for i := range m.rows {
		switch column {
		case storage.HomeTeam:
			if m.rows[i].home == from {
				m.rows[i].home = to
				n++
			}
		case storage.AwayTeam:
			if m.rows[i].away == from {
				m.rows[i].away = to
				n++
			}
		}
	}
	return n, nil
}

func TestApplyInterAliases(t *testing.T) {
	t.Parallel()

	r, err := Load([]Entry{
		{Alias: "Internazionale", Canonical: "Inter"},
		{Alias: "Inter Milan", Canonical: "Inter"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	store := &memoryStore{rows: []fixture{
		{home: "Internazionale", away: "Roma"},
		{home: "Inter Milan", away: "Lazio"},
		{home: "Napoli", away: "Juventus"},
	}}

	n, err := r.Apply(context.Background(), store)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows updated, got %d", n)
	}
	for i, row := range store.rows[:2] {
		if row.home != "Inter" {
			t.Fatalf("row %d: expected home_team Inter, got %q", i, row.home)
		}
	}
	if store.rows[2] != (fixture{home: "Napoli", away: "Juventus"}) {
		t.Fatalf("expected unrelated row untouched, got %+v", store.rows[2])
	}

	again, err := r.Apply(context.Background(), store)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected second run to update 0 rows, got %d", again)
	}
}

func TestApplyRewritesAwayColumn(t *testing.T) {
	t.Parallel()

	r, err := Load([]Entry{{Alias: "Man City", Canonical: "Manchester City"}}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	store := &memoryStore{rows: []fixture{{home: "Arsenal", away: "Man City"}, {home: "Man City", away: "Chelsea"}}}

	n, err := r.Apply(context.Background(), store)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 rows, got %d (err=%v)", n, err)
	}
	if store.rows[0].away != "Manchester City" || store.rows[1].home != "Manchester City" {
		t.Fatalf("expected both columns rewritten, got %+v", store.rows)
	}
}

func TestLoadRejectsConflicts(t *testing.T) {
	t.Parallel()

	_, err := Load([]Entry{
		{Alias: "Inter", Canonical: "Inter"},
		{Alias: "Internazionale", Canonical: "Inter"},
		{Alias: "Internazionale", Canonical: "Inter Miami"},
	}, zerolog.Nop())

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Alias != "Internazionale" || conflict.First != "Inter" || conflict.Second != "Inter Miami" {
		t.Fatalf("unexpected conflict %+v", conflict)
	}
}

func TestLoadDropsIdentityAndRepeats(t *testing.T) {
	t.Parallel()

	r, err := Load([]Entry{
		{Alias: "RB Leipzig", Canonical: "RB Leipzig"},
		{Alias: "Leipzig", Canonical: "RB Leipzig"},
		{Alias: "Leipzig", Canonical: "RB Leipzig"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected a single alias, got %v", r.Entries())
	}
	if c, ok := r.Lookup("Leipzig"); !ok || c != "RB Leipzig" {
		t.Fatalf("expected Leipzig -> RB Leipzig, got %q (%t)", c, ok)
	}
	if _, ok := r.Lookup("RB Leipzig"); ok {
		t.Fatalf("expected identity pair to be dropped")
	}
}

func TestApplyContinuesAfterFailures(t *testing.T) {
	t.Parallel()

	r, err := Load([]Entry{
		{Alias: "A", Canonical: "Alpha"},
		{Alias: "B", Canonical: "Beta"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	boom := errors.New("connection reset")
	store := &memoryStore{
		rows: []fixture{{home: "B", away: "A"}},
		fail: map[string]error{
			"A/" + string(storage.AwayTeam): boom,
			"B/" + string(storage.HomeTeam): fmt.Errorf("rename: %w", storage.ErrDuplicate),
		},
	}

	n, err := r.Apply(context.Background(), store)
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain the failure, got %v", err)
	}
	if errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected duplicate clash to be skipped, not reported")
	}
	if store.renames != 4 {
		t.Fatalf("expected every column of every pair attempted, got %d", store.renames)
	}
	if n != 0 {
		t.Fatalf("expected no rows updated, got %d", n)
	}
}

func TestFromDefaultTeamsLoads(t *testing.T) {
	t.Parallel()

	reg, err := teams.Load("")
	if err != nil {
		t.Fatalf("teams.Load failed: %v", err)
	}
	r, err := Load(FromTeams(reg), zerolog.Nop())
	if err != nil {
		t.Fatalf("expected default team table to be conflict free, got %v", err)
	}
	if c, ok := r.Lookup("Internazionale"); !ok || c != "Inter" {
		t.Fatalf("expected Internazionale -> Inter, got %q (%t)", c, ok)
	}
	entries := r.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Alias > entries[i].Alias {
			t.Fatalf("expected sorted aliases, got %q before %q", entries[i-1].Alias, entries[i].Alias)
		}
	}
}
