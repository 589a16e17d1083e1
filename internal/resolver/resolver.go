// Package resolver rewrites alias spellings of team names in the results
// store to their canonical form.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"pitchside/internal/storage"
	"pitchside/internal/teams"
)

// Entry is one alias to canonical pair as configured.
type Entry struct {
	Alias     string
	Canonical string
}

// ConflictError means one alias was configured for two canonical names.
type ConflictError struct {
	Alias  string
	First  string
	Second string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("alias %q maps to both %q and %q", e.Alias, e.First, e.Second)
}

// Store is the part of the results store the resolver writes to.
type Store interface {
	RenameTeam(ctx context.Context, column storage.TeamColumn, from, to string) (int64, error)
}

// Resolver holds a validated alias map.
type Resolver struct {
	aliases map[string]string
	order   []string
	logger  zerolog.Logger
}

// Load validates entries and builds a Resolver. Identity pairs are
// dropped; an alias repeated with the same canonical is accepted.
func Load(entries []Entry, logger zerolog.Logger) (*Resolver, error) {
	r := &Resolver{aliases: make(map[string]string, len(entries)), logger: logger}
	for _, e := range entries {
		alias := strings.TrimSpace(e.Alias)
		canonical := strings.TrimSpace(e.Canonical)
		if alias == "" || canonical == "" {
			return nil, fmt.Errorf("alias entry %q -> %q: empty value", e.Alias, e.Canonical)
		}
		if alias == canonical {
			continue
		}
		if prev, ok := r.aliases[alias]; ok {
			if prev != canonical {
				return nil, &ConflictError{Alias: alias, First: prev, Second: canonical}
			}
			continue
		}
		r.aliases[alias] = canonical
		r.order = append(r.order, alias)
	}
	sort.Strings(r.order)
	return r, nil
}

// FromTeams builds the entries of every team's store aliases.
func FromTeams(reg *teams.Registry) []Entry {
	var entries []Entry
	for _, team := range reg.All() {
		for _, alias := range team.Aliases {
			entries = append(entries, Entry{Alias: alias, Canonical: team.Canonical})
		}
	}
	return entries
}

// Len returns the number of aliases.
func (r *Resolver) Len() int { return len(r.order) }

// Lookup returns the canonical name for alias.
func (r *Resolver) Lookup(alias string) (string, bool) {
	c, ok := r.aliases[strings.TrimSpace(alias)]
	return c, ok
}

// Entries returns the pairs in the order Apply processes them.
func (r *Resolver) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, alias := range r.order {
		out = append(out, Entry{Alias: alias, Canonical: r.aliases[alias]})
	}
	return out
}

// Apply rewrites every alias in the home and away columns and returns the
// total number of rows updated. A second run over the same store updates
// nothing. Failed updates are logged and joined into the returned error;
// the remaining pairs still run. Unique-key clashes are logged and skipped.
func (r *Resolver) Apply(ctx context.Context, store Store) (int, error) {
	total := 0
	var errs []error
	for _, alias := range r.order {
		canonical := r.aliases[alias]
		for _, column := range storage.TeamColumns {
			if err := ctx.Err(); err != nil {
				return total, errors.Join(append(errs, err)...)
			}
			n, err := store.RenameTeam(ctx, column, alias, canonical)
			if err != nil {
				if errors.Is(err, storage.ErrDuplicate) {
					r.logger.Warn().Err(err).Str("alias", alias).Str("canonical", canonical).Str("column", string(column)).Msg("rename collides with existing fixture, skipped")
					continue
				}
				r.logger.Error().Err(err).Str("alias", alias).Str("column", string(column)).Msg("rename failed")
				errs = append(errs, err)
				continue
			}
			if n > 0 {
				r.logger.Info().Str("alias", alias).Str("canonical", canonical).Str("column", string(column)).Int64("rows", n).Msg("renamed team")
			}
			total += int(n)
		}
	}
	return total, errors.Join(errs...)
}
