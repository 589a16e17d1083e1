// Package pipeline runs the scrape, match, classify, summarize and persist
// steps for one team, one fixture or every configured team.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"pitchside/internal/classify"
	"pitchside/internal/insight"
	"pitchside/internal/matcher"
	"pitchside/internal/news"
	"pitchside/internal/report"
	"pitchside/internal/sources"
	"pitchside/internal/summary"
	"pitchside/internal/teams"
)

// Fetcher returns the articles of every source for a query.
type Fetcher interface {
	FetchAll(ctx context.Context, srcs []sources.Source, query string) ([]news.RawArticle, []error)
}

// NewsStore persists processed articles.
type NewsStore interface {
	SaveNews(ctx context.Context, a news.ProcessedArticle) error
}

// Options tune a run.
type Options struct {
	// Window is the confusable-suffix window in runes.
	Window int
	// Limit caps the articles kept per team after sorting; 0 keeps all.
	Limit  int
	DryRun bool
	Brief  bool
}

// Service ties together fetching, matching, classification and storage.
type Service struct {
	fetcher    Fetcher
	sources    []sources.Source
	classifier *classify.Classifier
	store      NewsStore
	briefer    insight.Briefer
	logger     zerolog.Logger
	opts       Options
	now        func() time.Time
}

// NewService creates a Service. store may be nil for dry runs and briefer
// may be nil when briefs are never requested.
func NewService(fetcher Fetcher, srcs []sources.Source, classifier *classify.Classifier, store NewsStore, briefer insight.Briefer, logger zerolog.Logger, opts Options) *Service {
	if opts.Window <= 0 {
		opts.Window = matcher.DefaultWindow
	}
	return &Service{
		fetcher:    fetcher,
		sources:    srcs,
		classifier: classifier,
		store:      store,
		briefer:    briefer,
		logger:     logger,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// TeamResult is the outcome of a run for one team.
type TeamResult struct {
	Team         teams.CanonicalTeam
	Fetched      int
	SourceErrors int
	Articles     []news.ProcessedArticle
	Summary      news.TeamSummary
	Brief        *insight.Brief
	Saved        int
	SaveErrors   int
}

// Report converts the result into its report section.
func (r TeamResult) Report() report.TeamReport {
	return report.TeamReport{
		Name:     r.Team.Canonical,
		Summary:  r.Summary,
		Articles: r.Articles,
		Brief:    r.Brief,
	}
}

// RunTeam fetches with the team's canonical name as query and processes
// the result for that team.
func (s *Service) RunTeam(ctx context.Context, team teams.CanonicalTeam) (TeamResult, error) {
	return s.runTeam(ctx, team, "")
}

// RunMatch runs both sides of a fixture and assembles the match report.
func (s *Service) RunMatch(ctx context.Context, home, away teams.CanonicalTeam) (report.MatchReport, []TeamResult, error) {
	homeRes, err := s.runTeam(ctx, home, away.Canonical)
	if err != nil {
		return report.MatchReport{}, nil, err
	}
	awayRes, err := s.runTeam(ctx, away, home.Canonical)
	if err != nil {
		return report.MatchReport{}, nil, err
	}
	rep := report.MatchReport{
		Match:       fmt.Sprintf("%s vs %s", home.Canonical, away.Canonical),
		GeneratedAt: s.now(),
		Home:        homeRes.Report(),
		Away:        awayRes.Report(),
	}
	return rep, []TeamResult{homeRes, awayRes}, nil
}

// RunAll fetches the general feeds once and distributes the articles to
// every team.
func (s *Service) RunAll(ctx context.Context, list []teams.CanonicalTeam) ([]TeamResult, error) {
	raw, failures := s.fetcher.FetchAll(ctx, s.sources, "")
	raw = dedupeByURL(raw)
	s.logger.Info().Int("articles", len(raw)).Int("failed_sources", len(failures)).Msg("fetched general news")

	results := make([]TeamResult, 0, len(list))
	for _, team := range list {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.process(ctx, team, "", raw, len(failures))
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Service) runTeam(ctx context.Context, team teams.CanonicalTeam, opponent string) (TeamResult, error) {
	logger := s.logger.With().Str("team", team.Canonical).Logger()
	logger.Info().Msg("scraping team news")

	raw, failures := s.fetcher.FetchAll(ctx, s.sources, team.Canonical)
	if err := ctx.Err(); err != nil {
		return TeamResult{}, err
	}
	return s.process(ctx, team, opponent, dedupeByURL(raw), len(failures))
}

func (s *Service) process(ctx context.Context, team teams.CanonicalTeam, opponent string, raw []news.RawArticle, failed int) (TeamResult, error) {
	logger := s.logger.With().Str("team", team.Canonical).Logger()

	kept := matcher.New(team, s.opts.Window).Filter(raw)
	sortNewestFirst(kept)
	if s.opts.Limit > 0 && len(kept) > s.opts.Limit {
		kept = kept[:s.opts.Limit]
	}

	processed := make([]news.ProcessedArticle, 0, len(kept))
	for _, a := range kept {
		processed = append(processed, s.classifier.Process(a, team))
	}

	res := TeamResult{
		Team:         team,
		Fetched:      len(raw),
		SourceErrors: failed,
		Articles:     processed,
		Summary:      summary.SummarizeAt(team.Canonical, processed, s.now()),
	}
	logger.Info().Int("fetched", len(raw)).Int("relevant", len(processed)).Msg("filtered articles")

	if err := s.persist(ctx, &res, logger); err != nil {
		return res, err
	}
	s.brief(ctx, &res, opponent, logger)
	return res, nil
}

func (s *Service) persist(ctx context.Context, res *TeamResult, logger zerolog.Logger) error {
	if s.opts.DryRun || s.store == nil {
		return nil
	}
	for _, a := range res.Articles {
		if err := s.store.SaveNews(ctx, a); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			res.SaveErrors++
			logger.Error().Err(err).Str("url", a.URL).Msg("store news failed")
			continue
		}
		res.Saved++
	}
	logger.Info().Int("saved", res.Saved).Int("failed", res.SaveErrors).Msg("persisted news")
	return nil
}

func (s *Service) brief(ctx context.Context, res *TeamResult, opponent string, logger zerolog.Logger) {
	if !s.opts.Brief || s.briefer == nil || !s.briefer.Ready() || res.Summary.ArticleCount == 0 {
		return
	}
	b, err := s.briefer.Brief(ctx, insight.Request{Summary: res.Summary, Opponent: opponent, Headlines: res.Articles})
	if err != nil {
		logger.Warn().Err(err).Msg("brief generation failed")
		return
	}
	res.Brief = &b
}

// dedupeByURL keeps the first article seen for each URL.
func dedupeByURL(articles []news.RawArticle) []news.RawArticle {
	seen := make(map[string]struct{}, len(articles))
	out := make([]news.RawArticle, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}

// sortNewestFirst orders by publication time; undated articles go last in
// their original order.
func sortNewestFirst(articles []news.RawArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i].PublishedAt, articles[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
