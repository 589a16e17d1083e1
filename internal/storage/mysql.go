package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"pitchside/internal/config"
	"pitchside/internal/news"
)

// ErrDuplicate is returned when a write would violate a unique key.
var ErrDuplicate = errors.New("duplicate key")

const (
	mysqlDuplicateEntry = 1062
	maxSummaryRunes     = 2000
)

// TeamColumn names one of the two team-name columns of matches.
type TeamColumn string

const (
	HomeTeam TeamColumn = "home_team"
	AwayTeam TeamColumn = "away_team"
)

// TeamColumns lists the columns in the order they are rewritten.
var TeamColumns = []TeamColumn{HomeTeam, AwayTeam}

func (c TeamColumn) valid() bool {
	return c == HomeTeam || c == AwayTeam
}

// Store persists news rows and maintains team names in the results table.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// StoredNews is a row read back from the news table.
type StoredNews struct {
	TeamName    string
	Title       string
	URL         string
	Source      string
	PublishedAt *time.Time
	Category    news.Category
	Sentiment   float64
	Reliability float64
}

type newsMetadata struct {
	Confidence     float64              `json:"confidence"`
	Entities       []news.EntityMention `json:"entities,omitempty"`
	ImpactKeywords []string             `json:"impact_keywords,omitempty"`
	PublishedRaw   string               `json:"published_raw,omitempty"`
	ScrapedAt      time.Time            `json:"scraped_at"`
}

// NewMySQLStore creates the database (if needed), ensures schema, and returns a ready store.
func NewMySQLStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	rootDB, err := sql.Open("mysql", cfg.DSN(""))
	if err != nil {
		return nil, fmt.Errorf("open root mysql connection: %w", err)
	}
	if err := rootDB.PingContext(ctx); err != nil {
		_ = rootDB.Close()
		return nil, fmt.Errorf("ping root mysql: %w", err)
	}
	createDB := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", cfg.DBName)
	if _, err := rootDB.ExecContext(ctx, createDB); err != nil {
		_ = rootDB.Close()
		return nil, fmt.Errorf("create database: %w", err)
	}
	_ = rootDB.Close()

	db, err := sql.Open("mysql", cfg.DSN(cfg.DBName))
	if err != nil {
		return nil, fmt.Errorf("open mysql with db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql with db: %w", err)
	}

	store := New(db, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info().Str("host", cfg.DBHost).Str("database", cfg.DBName).Msg("connected to mysql")
	return store, nil
}

// New wraps an open connection. The schema is not touched.
func New(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the matches and news tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const createMatches = `
CREATE TABLE IF NOT EXISTS matches (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	date DATE NOT NULL,
	home_team VARCHAR(128) NOT NULL,
	away_team VARCHAR(128) NOT NULL,
	home_goals INT NULL,
	away_goals INT NULL,
	league VARCHAR(16),
	season VARCHAR(16),
	home_xg DOUBLE NULL,
	away_xg DOUBLE NULL,
	UNIQUE KEY uniq_fixture (date, home_team, away_team),
	KEY idx_home_team (home_team),
	KEY idx_away_team (away_team)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`
	const createNews = `
CREATE TABLE IF NOT EXISTS news (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	team_name VARCHAR(128) NOT NULL,
	title TEXT NOT NULL,
	summary TEXT,
	url VARCHAR(768) NOT NULL UNIQUE,
	source VARCHAR(128),
	published_at DATETIME NULL,
	category VARCHAR(32),
	sentiment DOUBLE,
	reliability DOUBLE,
	metadata JSON,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_team_published (team_name, published_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`
	if _, err := s.db.ExecContext(ctx, createMatches); err != nil {
		return fmt.Errorf("ensure schema matches: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createNews); err != nil {
		return fmt.Errorf("ensure schema news: %w", err)
	}
	return nil
}

// SaveNews stores or updates a processed article, keyed by URL.
func (s *Store) SaveNews(ctx context.Context, a news.ProcessedArticle) error {
	meta, err := json.Marshal(newsMetadata{
		Confidence:     a.Confidence,
		Entities:       a.Entities,
		ImpactKeywords: a.ImpactKeywords,
		PublishedRaw:   a.PublishedRaw,
		ScrapedAt:      a.ScrapedAt,
	})
	if err != nil {
		return fmt.Errorf("encode news metadata: %w", err)
	}

	var published sql.NullTime
	if a.PublishedAt != nil {
		published = sql.NullTime{Time: a.PublishedAt.UTC(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO news (team_name, title, summary, url, source, published_at, category, sentiment, reliability, metadata)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
	team_name=VALUES(team_name),
	title=VALUES(title),
	summary=VALUES(summary),
	source=VALUES(source),
	published_at=VALUES(published_at),
	category=VALUES(category),
	sentiment=VALUES(sentiment),
	reliability=VALUES(reliability),
	metadata=VALUES(metadata),
	updated_at=CURRENT_TIMESTAMP
`, a.TeamID, a.Title, truncateRunes(a.Body, maxSummaryRunes), a.URL, a.Source, published,
		string(a.Category), a.Sentiment, a.Reliability, string(meta))
	if err != nil {
		return fmt.Errorf("save news: %w", err)
	}
	return nil
}

// RenameTeam rewrites every value equal to from in column to to and returns
// the number of rows changed. A unique-key clash comes back wrapped in
// ErrDuplicate.
func (s *Store) RenameTeam(ctx context.Context, column TeamColumn, from, to string) (int64, error) {
	if !column.valid() {
		return 0, fmt.Errorf("rename team: unknown column %q", column)
	}
	// column is one of two constants, never user input.
	query := fmt.Sprintf("UPDATE matches SET %s = ? WHERE %s = ?", column, column)
	res, err := s.db.ExecContext(ctx, query, to, from)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("rename %s %q to %q: %w: %v", column, from, to, ErrDuplicate, err)
		}
		return 0, fmt.Errorf("rename %s %q to %q: %w", column, from, to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rename team rows affected: %w", err)
	}
	return n, nil
}

// DistinctTeamNames returns every team name used on either side of
// matches, sorted.
func (s *Store) DistinctTeamNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name FROM (
	SELECT home_team AS name FROM matches
	UNION
	SELECT away_team AS name FROM matches
) AS names
ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list team names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// PurgeNews deletes news rows whose title or summary contains any of
// keywords, case-insensitively.
func (s *Store) PurgeNews(ctx context.Context, keywords []string) (int64, error) {
	var (
		clauses []string
		args    []any
	)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		pattern := "%" + escapeLike(kw) + "%"
		clauses = append(clauses, "LOWER(title) LIKE ? OR LOWER(summary) LIKE ?")
		args = append(args, pattern, pattern)
	}
	if len(clauses) == 0 {
		return 0, fmt.Errorf("purge news: no keywords")
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM news WHERE "+strings.Join(clauses, " OR "), args...)
	if err != nil {
		return 0, fmt.Errorf("purge news: %w", err)
	}
	return res.RowsAffected()
}

// PurgeTeamNews deletes every news row stored for team.
func (s *Store) PurgeTeamNews(ctx context.Context, team string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM news WHERE team_name = ?", team)
	if err != nil {
		return 0, fmt.Errorf("purge team news: %w", err)
	}
	return res.RowsAffected()
}

// ListNews returns the most recent news rows for team.
func (s *Store) ListNews(ctx context.Context, team string, limit int) ([]StoredNews, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT team_name, title, url, source, published_at, category, sentiment, reliability
FROM news
WHERE team_name = ?
ORDER BY published_at DESC, id DESC
LIMIT ?`, team, limit)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var items []StoredNews
	for rows.Next() {
		var (
			item     StoredNews
			source   sql.NullString
			pub      sql.NullTime
			category sql.NullString
		)
		if err := rows.Scan(&item.TeamName, &item.Title, &item.URL, &source, &pub, &category, &item.Sentiment, &item.Reliability); err != nil {
			return nil, err
		}
		item.Source = source.String
		item.Category = news.Category(category.String)
		if pub.Valid {
			t := pub.Time
			item.PublishedAt = &t
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
