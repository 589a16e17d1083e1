package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"pitchside/internal/cli"
	"pitchside/internal/dupes"
	"pitchside/internal/report"
	"pitchside/internal/teams"
)

func runDupes(args []string) int {
	fs := flag.NewFlagSet("dupes", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	minLen := fs.Int("min-len", dupes.DefaultMinLen, "Ignore names of at most N characters")
	timeout := fs.Duration("timeout", time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *minLen < 0 {
		fmt.Fprintln(os.Stderr, "--min-len must be >= 0")
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

	ctx, cancel, store, err := connectStore(*timeout, cfg, logger)
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer store.Close()

	names, err := store.DistinctTeamNames(ctx)
	if err != nil {
		return fail(fmt.Errorf("list team names: %w", err))
	}

	pairs := dupes.Propose(names, *minLen)
	findings := dupes.Audit(names, reg)

	if len(pairs) > 0 {
		if err := report.PairsTable(pairs).Render(os.Stdout); err != nil {
			return fail(err)
		}
	}
	if len(findings) > 0 {
		fmt.Println()
		if err := report.FindingsTable(findings).Render(os.Stdout); err != nil {
			return fail(err)
		}
	}
	fmt.Printf("names=%d candidate_pairs=%d audit_findings=%d\n", len(names), len(pairs), len(findings))
	return 0
}
