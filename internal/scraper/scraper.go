// Package scraper fetches raw articles from the configured sources. Every
// request passes through one shared rate limiter and results are cached
// per (source, query).
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"pitchside/internal/cache"
	"pitchside/internal/news"
	"pitchside/internal/ratelimit"
	"pitchside/internal/sources"
)

const (
	maxBodyBytes      = 8 << 20
	titlePrefixLength = 60
)

// Options tune request behaviour.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxItems  int
	Retries   int
}

type Scraper struct {
	client   *http.Client
	limiter  *ratelimit.Limiter
	cache    *cache.File
	executor failsafe.Executor[[]byte]
	parser   *gofeed.Parser
	logger   zerolog.Logger

	userAgent string
	maxItems  int
	now       func() time.Time
}

func New(limiter *ratelimit.Limiter, store *cache.File, opts Options, logger zerolog.Logger) *Scraper {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = 20
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	retry := retrypolicy.NewBuilder[[]byte]().
		HandleIf(func(_ []byte, err error) bool {
			return shouldRetry(err)
		}).
		WithMaxRetries(opts.Retries).
		ReturnLastFailure().
		Build()

	return &Scraper{
		client:    &http.Client{Timeout: opts.Timeout},
		limiter:   limiter,
		cache:     store,
		executor:  failsafe.With[[]byte](retry),
		parser:    gofeed.NewParser(),
		logger:    logger,
		userAgent: opts.UserAgent,
		maxItems:  opts.MaxItems,
		now:       time.Now,
	}
}

// Fetch returns the articles of one source for query. A fresh cache entry
// is returned without touching the network. Failures come back as
// *NetworkError or *ParseError; malformed single items are skipped and
// logged without failing the source.
func (s *Scraper) Fetch(ctx context.Context, src sources.Source, query string) ([]news.RawArticle, error) {
	if cached, ok := s.cache.Get(src.Name(), query); ok {
		return cached, nil
	}

	var (
		articles []news.RawArticle
		err      error
	)
	switch src := src.(type) {
	case sources.RSSSource:
		articles, err = s.fetchRSS(ctx, src)
	case sources.HTMLSource:
		articles, err = s.fetchHTML(ctx, src, query)
	default:
		return nil, fmt.Errorf("unsupported source type %T", src)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("source", src.Name()).Int("articles", len(articles)).Msg("fetched source")
	if len(articles) > 0 {
		if err := s.cache.Put(src.Name(), query, articles); err != nil {
			s.logger.Warn().Err(err).Str("source", src.Name()).Msg("cache save failed")
		}
	}
	return articles, nil
}

// FetchAll fetches every source in order. A failing source is logged and
// skipped; its error is returned alongside the articles of the others.
func (s *Scraper) FetchAll(ctx context.Context, srcs []sources.Source, query string) ([]news.RawArticle, []error) {
	var (
		all      []news.RawArticle
		failures []error
	)
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}
		articles, err := s.Fetch(ctx, src, query)
		if err != nil {
			s.logFailure(src, err)
			failures = append(failures, err)
			continue
		}
		all = append(all, articles...)
	}
	return all, failures
}

func (s *Scraper) logFailure(src sources.Source, err error) {
	event := s.logger.Error().Err(err).Str("source", src.Name())
	var netErr *NetworkError
	var parseErr *ParseError
	switch {
	case errors.As(err, &netErr):
		event.Str("kind", "network").Str("url", netErr.URL).Int("status", netErr.Status)
	case errors.As(err, &parseErr):
		event.Str("kind", "parse")
	}
	event.Msg("source failed, continuing")
}

// get performs one rate-limited GET, retried per the failsafe policy. Each
// attempt waits on the shared limiter.
func (s *Scraper) get(ctx context.Context, src sources.Source, endpoint string) ([]byte, error) {
	body, err := s.executor.WithContext(ctx).Get(func() ([]byte, error) {
		slept, err := s.limiter.Wait(ctx)
		if err != nil {
			return nil, err
		}
		if slept > 0 {
			s.logger.Debug().Dur("slept", slept).Str("source", src.Name()).Msg("rate limiting")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		if s.userAgent != "" {
			req.Header.Set("User-Agent", s.userAgent)
		}
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return nil, &statusError{Code: resp.StatusCode}
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	})
	if err != nil {
		netErr := &NetworkError{Source: src.Name(), URL: endpoint, Err: err}
		var status *statusError
		if errors.As(err, &status) {
			netErr.Status = status.Code
		}
		return nil, netErr
	}
	return body, nil
}

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *statusError
	if errors.As(err, &status) {
		return status.retryable()
	}
	// transport failures and timeouts
	return true
}

// resolveLink makes link absolute against base.
func resolveLink(base, link string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

func titlePrefix(title string) string {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) <= titlePrefixLength {
		return title
	}
	return string([]rune(title)[:titlePrefixLength])
}

func (s *Scraper) skipItem(src sources.Source, err *ParseError) {
	s.logger.Warn().
		Err(err.Err).
		Str("source", src.Name()).
		Str("title", err.Item).
		Msg("skipping malformed item")
}
