package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"pitchside/internal/cli"
)

func runPurge(args []string) int {
	fs := flag.NewFlagSet("purge", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	keywords := fs.String("keywords", "", "Comma separated keywords; rows whose title or summary contain one are deleted")
	team := fs.String("team", "", "Delete every news row of this team")
	timeout := fs.Duration("timeout", time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	words, teamName, err := purgeTarget(*keywords, *team)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, logger, err := bootstrap(envLoader)
	if err != nil {
		return fail(err)
	}
	ctx, cancel, store, err := connectStore(*timeout, cfg, logger)
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer store.Close()

	if teamName != "" {
		deleted, err := store.PurgeTeamNews(ctx, teamName)
		if err != nil {
			return fail(fmt.Errorf("purge team %s: %w", teamName, err))
		}
		fmt.Printf("team=%s rows_deleted=%d\n", teamName, deleted)
		return 0
	}

	deleted, err := store.PurgeNews(ctx, words)
	if err != nil {
		return fail(fmt.Errorf("purge keywords: %w", err))
	}
	fmt.Printf("keywords=%d rows_deleted=%d\n", len(words), deleted)
	return 0
}

// purgeTarget picks between a keyword purge and a team purge. With neither
// flag set the default non-football keyword list is used.
func purgeTarget(keywords, team string) ([]string, string, error) {
	team = strings.TrimSpace(team)
	words := splitList(keywords)
	switch {
	case team != "" && strings.TrimSpace(keywords) != "":
		return nil, "", errors.New("purge takes --keywords or --team, not both")
	case team != "":
		return nil, team, nil
	case strings.TrimSpace(keywords) != "" && len(words) == 0:
		return nil, "", errors.New("--keywords has no usable entries")
	case len(words) == 0:
		return append([]string(nil), defaultPurgeKeywords...), "", nil
	default:
		return words, "", nil
	}
}
