// Package app implements the pitchside command line.
package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "scrape":
		return runScrape(args[1:])
	case "normalize":
		return runNormalize(args[1:])
	case "dupes":
		return runDupes(args[1:])
	case "purge":
		return runPurge(args[1:])
	case "recent":
		return runRecent(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "pitchside CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  pitchside <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  scrape     Fetch, filter and classify news for a team, a fixture or every team")
	fmt.Fprintln(os.Stderr, "  normalize  Rewrite alias team names in the matches table")
	fmt.Fprintln(os.Stderr, "  dupes      Propose likely duplicate team names for review")
	fmt.Fprintln(os.Stderr, "  purge      Delete non-football or stale news rows")
	fmt.Fprintln(os.Stderr, "  recent     List stored news for a team")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"pitchside <command> -h\" for command-specific flags.")
}
