package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pitchside/internal/cache"
	"pitchside/internal/classify"
	"pitchside/internal/cli"
	"pitchside/internal/config"
	"pitchside/internal/insight"
	"pitchside/internal/news"
	"pitchside/internal/pipeline"
	"pitchside/internal/ratelimit"
	"pitchside/internal/report"
	"pitchside/internal/scraper"
	"pitchside/internal/sources"
	"pitchside/internal/storage"
	"pitchside/internal/teams"
)

type scrapeFlags struct {
	team   string
	match  string
	all    bool
	limit  int
	out    string
	dryRun bool
	brief  bool
}

func (f scrapeFlags) validate() error {
	modes := 0
	if strings.TrimSpace(f.team) != "" {
		modes++
	}
	if strings.TrimSpace(f.match) != "" {
		modes++
	}
	if f.all {
		modes++
	}
	if modes != 1 {
		return errors.New("scrape needs exactly one of --team, --match or --all")
	}
	if f.limit < 0 {
		return errors.New("--limit must be >= 0")
	}
	if f.match != "" {
		if _, _, err := parseMatch(f.match); err != nil {
			return err
		}
	}
	return nil
}

func runScrape(args []string) int {
	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	var f scrapeFlags
	fs.StringVar(&f.team, "team", "", "Scrape news for one team")
	fs.StringVar(&f.match, "match", "", "Scrape both sides of a fixture, as HOME,AWAY")
	fs.BoolVar(&f.all, "all", false, "Scrape general feeds once for every configured team")
	fs.IntVar(&f.limit, "limit", 0, "Keep at most N articles per team, newest first (0 keeps all)")
	fs.StringVar(&f.out, "out", "", "Write the JSON report to this file")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Do not write to the store")
	fs.BoolVar(&f.brief, "brief", false, "Generate an OpenAI brief per team")
	timeout := fs.Duration("timeout", 15*time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if err := f.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, logger, err := bootstrap(envLoader)
	if err != nil {
		return fail(err)
	}
	if !f.dryRun {
		if err := cfg.RequireStore(); err != nil {
			return fail(err)
		}
	}
	srcs, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		return fail(err)
	}
	reg, err := teams.Load(cfg.TeamsFile)
	if err != nil {
		return fail(err)
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
		store  pipeline.NewsStore
	)
	if f.dryRun {
		ctx, cancel = context.WithTimeout(context.Background(), *timeout)
	} else {
		var s *storage.Store
		ctx, cancel, s, err = connectStore(*timeout, cfg, logger)
		if err != nil {
			return fail(err)
		}
		defer s.Close()
		store = s
	}
	defer cancel()

	svc := newService(cfg, srcs, store, f, logger)

	switch {
	case f.team != "":
		return scrapeTeam(ctx, svc, reg, f, logger)
	case f.match != "":
		return scrapeMatch(ctx, svc, reg, f, cfg.CacheDir, logger)
	default:
		return scrapeAll(ctx, svc, reg, f, logger)
	}
}

func newService(cfg *config.Config, srcs []sources.Source, store pipeline.NewsStore, f scrapeFlags, logger zerolog.Logger) *pipeline.Service {
	files := cache.New(cfg.CacheDir, cfg.CacheTTL, logger)
	if removed, err := files.Prune(); err != nil {
		logger.Warn().Err(err).Msg("cache prune failed")
	} else if removed > 0 {
		logger.Info().Int("removed", removed).Msg("pruned stale cache entries")
	}

	fetcher := scraper.New(ratelimit.New(cfg.RateLimitInterval), files, scraper.Options{
		Timeout:   cfg.RequestTimeout,
		UserAgent: cfg.UserAgent,
		MaxItems:  cfg.MaxArticlesPerSource,
		Retries:   cfg.FetchRetries,
	}, logger)

	var briefer insight.Briefer
	if f.brief {
		client := insight.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBase, logger)
		if !client.Ready() {
			logger.Warn().Msg("OPENAI_API_KEY is not set, briefs are skipped")
		}
		briefer = client
	}

	return pipeline.NewService(fetcher, srcs, classify.Default(), store, briefer, logger, pipeline.Options{
		Window: cfg.SuffixWindow,
		Limit:  f.limit,
		DryRun: f.dryRun,
		Brief:  f.brief,
	})
}

func scrapeTeam(ctx context.Context, svc *pipeline.Service, reg *teams.Registry, f scrapeFlags, logger zerolog.Logger) int {
	team, err := resolveTeam(reg, f.team, logger)
	if err != nil {
		return fail(err)
	}
	res, err := svc.RunTeam(ctx, team)
	if err != nil {
		return fail(fmt.Errorf("scrape %s: %w", team.Canonical, err))
	}
	printResults(res)
	if f.out != "" {
		if err := report.WriteJSON(f.out, res.Report()); err != nil {
			return fail(err)
		}
		fmt.Printf("report=%s\n", f.out)
	}
	return 0
}

func scrapeMatch(ctx context.Context, svc *pipeline.Service, reg *teams.Registry, f scrapeFlags, dir string, logger zerolog.Logger) int {
	homeName, awayName, err := parseMatch(f.match)
	if err != nil {
		return fail(err)
	}
	home, err := resolveTeam(reg, homeName, logger)
	if err != nil {
		return fail(err)
	}
	away, err := resolveTeam(reg, awayName, logger)
	if err != nil {
		return fail(err)
	}

	rep, results, err := svc.RunMatch(ctx, home, away)
	if err != nil {
		return fail(fmt.Errorf("scrape %s: %w", f.match, err))
	}
	printResults(results...)

	path := f.out
	if path == "" {
		path = report.DefaultPath(dir, home.Canonical, away.Canonical, rep.GeneratedAt)
	}
	if err := report.WriteJSON(path, rep); err != nil {
		return fail(err)
	}
	fmt.Printf("report=%s\n", path)
	return 0
}

func scrapeAll(ctx context.Context, svc *pipeline.Service, reg *teams.Registry, f scrapeFlags, logger zerolog.Logger) int {
	results, err := svc.RunAll(ctx, reg.All())
	if err != nil {
		return fail(fmt.Errorf("scrape all: %w", err))
	}
	printResults(results...)
	logger.Info().Int("teams", len(results)).Msg("scrape finished")

	if f.out != "" {
		reports := make([]report.TeamReport, 0, len(results))
		for _, res := range results {
			reports = append(reports, res.Report())
		}
		if err := report.WriteJSON(f.out, reports); err != nil {
			return fail(err)
		}
		fmt.Printf("report=%s\n", f.out)
	}
	return 0
}

func printResults(results ...pipeline.TeamResult) {
	summaries := make([]news.TeamSummary, 0, len(results))
	for _, res := range results {
		summaries = append(summaries, res.Summary)
	}
	if err := report.SummaryTable(summaries...).Render(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "render summary: %v\n", err)
	}
	for _, res := range results {
		if len(res.Articles) == 0 {
			continue
		}
		fmt.Printf("\n%s\n", res.Team.Canonical)
		if err := report.ArticlesTable(res.Articles).Render(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "render articles: %v\n", err)
		}
		if res.Brief != nil {
			fmt.Printf("brief (%s): %s\n", res.Brief.Outlook, res.Brief.Headline)
		}
	}
	for _, res := range results {
		fmt.Printf("team=%s fetched=%d relevant=%d saved=%d save_errors=%d source_errors=%d\n",
			res.Team.Canonical, res.Fetched, len(res.Articles), res.Saved, res.SaveErrors, res.SourceErrors)
	}
}
