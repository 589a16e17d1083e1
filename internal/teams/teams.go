// Package teams holds the canonical team table: store spellings, mention
// terms, key players and the confusable suffixes that veto a mention.
package teams

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"pitchside/internal/config"
)

//go:embed teams.yaml
var defaultTeamsYAML []byte

// Player is a marquee player. The name doubles as a mention term.
type Player struct {
	Name       string  `yaml:"name"`
	Role       string  `yaml:"role"`
	Importance float64 `yaml:"importance"`
}

// CanonicalTeam is one team identity.
type CanonicalTeam struct {
	Canonical string `yaml:"canonical"`
	// Aliases are alternate spellings found in the results store.
	Aliases []string `yaml:"aliases"`
	// Mentions are nicknames and abbreviations used in prose.
	Mentions           []string `yaml:"mentions"`
	Players            []Player `yaml:"players"`
	ConfusableSuffixes []string `yaml:"confusable_suffixes"`
	League             string   `yaml:"league"`
}

// Terms returns every string that counts as a mention of the team:
// canonical name, aliases, mentions and player names, deduplicated
// case-insensitively in declaration order.
func (t CanonicalTeam) Terms() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(values ...string) {
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			key := strings.ToLower(v)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	add(t.Canonical)
	add(t.Aliases...)
	add(t.Mentions...)
	for _, p := range t.Players {
		add(p.Name)
	}
	return out
}

// Registry indexes teams by canonical name and by any alias or mention.
type Registry struct {
	teams  []CanonicalTeam
	byName map[string]int
}

type fileFormat struct {
	Teams []CanonicalTeam `yaml:"teams"`
}

// Load reads the team table from path, or the embedded defaults when path
// is empty.
func Load(path string) (*Registry, error) {
	data := defaultTeamsYAML
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, &config.Error{Key: "TEAMS_FILE", Reason: err.Error()}
		}
		data = raw
	}
	return Parse(data)
}

func Parse(data []byte) (*Registry, error) {
	var file fileFormat
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &config.Error{Key: "TEAMS_FILE", Reason: fmt.Sprintf("parse YAML: %v", err)}
	}
	return NewRegistry(file.Teams)
}

// NewRegistry validates teams and builds the lookup index. Name lookups
// are case-insensitive; canonical names take precedence over aliases and
// mentions when strings collide.
func NewRegistry(list []CanonicalTeam) (*Registry, error) {
	if len(list) == 0 {
		return nil, &config.Error{Key: "TEAMS_FILE", Reason: "no teams configured"}
	}

	r := &Registry{
		teams:  make([]CanonicalTeam, 0, len(list)),
		byName: make(map[string]int),
	}
	for i, team := range list {
		team.Canonical = strings.TrimSpace(team.Canonical)
		if team.Canonical == "" {
			return nil, &config.Error{Key: fmt.Sprintf("teams[%d]", i), Reason: "canonical must not be empty"}
		}
		key := strings.ToLower(team.Canonical)
		if _, dup := r.byName[key]; dup {
			return nil, &config.Error{Key: fmt.Sprintf("teams[%d]", i), Reason: fmt.Sprintf("duplicate canonical %q", team.Canonical)}
		}
		for _, p := range team.Players {
			if p.Importance < 0 || p.Importance > 1 {
				return nil, &config.Error{Key: fmt.Sprintf("teams[%d]", i), Reason: fmt.Sprintf("player %q importance outside [0,1]", p.Name)}
			}
		}
		r.byName[key] = len(r.teams)
		r.teams = append(r.teams, team)
	}

	for idx, team := range r.teams {
		for _, term := range team.Terms() {
			key := strings.ToLower(term)
			if _, taken := r.byName[key]; !taken {
				r.byName[key] = idx
			}
		}
	}
	return r, nil
}

// Lookup finds a team by canonical name, alias, mention or player name.
func (r *Registry) Lookup(name string) (CanonicalTeam, bool) {
	if r == nil {
		return CanonicalTeam{}, false
	}
	idx, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return CanonicalTeam{}, false
	}
	return r.teams[idx], true
}

// All returns the teams in declaration order.
func (r *Registry) All() []CanonicalTeam {
	if r == nil {
		return nil
	}
	out := make([]CanonicalTeam, len(r.teams))
	copy(out, r.teams)
	return out
}

// Canonicals returns the sorted canonical names.
func (r *Registry) Canonicals() []string {
	out := make([]string, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t.Canonical)
	}
	sort.Strings(out)
	return out
}
