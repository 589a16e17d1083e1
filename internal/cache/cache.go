// Package cache stores fetched articles on disk, one JSON file per
// (source, query) pair, valid while the file's mtime is younger than the
// TTL. Writers do not lock; the last writer wins.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pitchside/internal/news"
)

const allQuery = "all"

// entryName matches the file names produced by Path. Other files in the
// directory, such as match reports, are never pruned.
var entryName = regexp.MustCompile(`^[0-9a-f]{16}_[a-z0-9_]*\.json$`)

type File struct {
	dir    string
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func New(dir string, ttl time.Duration, logger zerolog.Logger) *File {
	return &File{
		dir:    dir,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Path derives the cache file for a (source, query) pair. An empty query
// is keyed as "all".
func (c *File) Path(source, query string) string {
	if strings.TrimSpace(query) == "" {
		query = allQuery
	}
	key := strings.ReplaceAll(strings.ToLower(source+"_"+query), " ", "_")
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])[:16]+"_"+slug(source)+".json")
}

// Get returns the cached articles when a fresh entry exists. Stale,
// missing or unreadable entries are a miss.
func (c *File) Get(source, query string) ([]news.RawArticle, bool) {
	path := c.Path(source, query)
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn().Err(err).Str("path", path).Msg("cache stat failed")
		}
		return nil, false
	}
	if age := c.now().Sub(info.ModTime()); age >= c.ttl {
		c.logger.Debug().Str("source", source).Dur("age", age).Msg("cache entry expired")
		return nil, false
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("cache read failed")
		return nil, false
	}
	var articles []news.RawArticle
	if err := json.Unmarshal(raw, &articles); err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("cache decode failed")
		return nil, false
	}

	c.logger.Info().Str("source", source).Int("articles", len(articles)).Msg("loaded articles from cache")
	return articles, true
}

// Put writes articles for (source, query), creating the cache directory
// if needed.
func (c *File) Put(source, query string, articles []news.RawArticle) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	path := c.Path(source, query)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	c.logger.Info().Str("source", source).Int("articles", len(articles)).Msg("saved articles to cache")
	return nil
}

// Prune removes cache entries older than the TTL and returns how many were
// deleted. Files not named by Path are left alone.
func (c *File) Prune() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cache dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !entryName.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if c.now().Sub(info.ModTime()) < c.ttl {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
