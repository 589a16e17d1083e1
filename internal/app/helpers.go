package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pitchside/internal/cli"
	"pitchside/internal/config"
	"pitchside/internal/logging"
	"pitchside/internal/storage"
	"pitchside/internal/teams"
)

// defaultPurgeKeywords names sports whose coverage leaks into general
// football feeds.
var defaultPurgeKeywords = []string{
	"tennis", "sinner", "djokovic", "alcaraz",
	"nba", "basketball", "cricket", "baseball",
	"f1", "formula 1", "boxing", "ufc", "olympics", "golf",
	"bbl", "perth scorchers", "sixers", "anthony joshua",
}

// bootstrap loads the .env file, configuration and logger. A missing .env
// file is only a warning.
func bootstrap(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	envPath, envErr := envLoader.Load()
	if envErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", envErr)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), &config.Error{Key: "LOG_LEVEL", Reason: err.Error()}
	}
	if envPath != "" {
		logger.Debug().Str("path", envPath).Msg("loaded env file")
	}
	return cfg, logger, nil
}

// connectStore validates store credentials and opens MySQL.
func connectStore(timeout time.Duration, cfg *config.Config, logger zerolog.Logger) (context.Context, context.CancelFunc, *storage.Store, error) {
	if err := cfg.RequireStore(); err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	store, err := storage.NewMySQLStore(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("connect store: %w", err)
	}
	return ctx, cancel, store, nil
}

// resolveTeam returns the registry entry for name. Unknown names run as a
// bare team matched on the name alone.
func resolveTeam(reg *teams.Registry, name string, logger zerolog.Logger) (teams.CanonicalTeam, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return teams.CanonicalTeam{}, fmt.Errorf("team name must not be empty")
	}
	if team, ok := reg.Lookup(name); ok {
		return team, nil
	}
	logger.Warn().Str("team", name).Msg("team not in registry, matching on name only")
	return teams.CanonicalTeam{Canonical: name}, nil
}

// parseMatch splits a HOME,AWAY fixture argument.
func parseMatch(raw string) (string, string, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("--match must be HOME,AWAY")
	}
	home, away := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if home == "" || away == "" {
		return "", "", fmt.Errorf("--match must be HOME,AWAY")
	}
	if strings.EqualFold(home, away) {
		return "", "", fmt.Errorf("--match needs two different teams")
	}
	return home, away, nil
}

// splitList parses a comma separated flag value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}
