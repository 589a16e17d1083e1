package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"pitchside/internal/cli"
	"pitchside/internal/report"
	"pitchside/internal/teams"
)

func runRecent(args []string) int {
	fs := flag.NewFlagSet("recent", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	team := fs.String("team", "", "Team to list")
	limit := fs.Int("limit", 20, "Maximum rows to list")
	timeout := fs.Duration("timeout", time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*team) == "" {
		fmt.Fprintln(os.Stderr, "recent requires --team")
		return 2
	}
	if *limit < 1 {
		fmt.Fprintln(os.Stderr, "--limit must be >= 1")
		return 2
	}

	cfg, logger, err := bootstrap(envLoader)
	if err != nil {
		return fail(err)
	}
	reg, err := teams.Load(cfg.TeamsFile)
	if err != nil {
		return fail(err)
	}
	name := strings.TrimSpace(*team)
	if known, ok := reg.Lookup(name); ok {
		name = known.Canonical
	}

	ctx, cancel, store, err := connectStore(*timeout, cfg, logger)
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer store.Close()

	items, err := store.ListNews(ctx, name, *limit)
	if err != nil {
		return fail(fmt.Errorf("list news for %s: %w", name, err))
	}
	if err := report.StoredNewsTable(items).Render(os.Stdout); err != nil {
		return fail(err)
	}
	fmt.Printf("team=%s rows=%d\n", name, len(items))
	return 0
}
