package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"pitchside/internal/cli"
	"pitchside/internal/report"
	"pitchside/internal/resolver"
	"pitchside/internal/teams"
)

func runNormalize(args []string) int {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	dryRun := fs.Bool("dry-run", false, "Print the alias map without touching the store")
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := bootstrap(envLoader)
	if err != nil {
		return fail(err)
	}
	if !*dryRun {
		if err := cfg.RequireStore(); err != nil {
			return fail(err)
		}
	}
	reg, err := teams.Load(cfg.TeamsFile)
	if err != nil {
		return fail(err)
	}
	res, err := resolver.Load(resolver.FromTeams(reg), logger)
	if err != nil {
		return fail(fmt.Errorf("load aliases: %w", err))
	}

	if *dryRun {
		table := report.Table{Headers: []string{"Alias", "Canonical"}}
		for _, e := range res.Entries() {
			table.Rows = append(table.Rows, []string{e.Alias, e.Canonical})
		}
		if err := table.Render(os.Stdout); err != nil {
			return fail(err)
		}
		fmt.Printf("dry_run=true aliases=%d\n", res.Len())
		return 0
	}

	ctx, cancel, store, err := connectStore(*timeout, cfg, logger)
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer store.Close()

	updated, err := res.Apply(ctx, store)
	fmt.Printf("aliases=%d rows_updated=%d\n", res.Len(), updated)
	if err != nil {
		return fail(fmt.Errorf("normalize: %w", err))
	}
	return 0
}
