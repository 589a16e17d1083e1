// Package sources describes where articles come from. A source is either
// an RSS feed or an HTML search page; the two shapes are distinct types
// and callers dispatch on them with a type switch.
package sources

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pitchside/internal/config"
)

//go:embed sources.yaml
var defaultSourcesYAML []byte

// Source is implemented by RSSSource and HTMLSource only.
type Source interface {
	Name() string
	Base() string
	Reliability() float64
	sealed()
}

type RSSSource struct {
	DisplayName string
	BaseURL     string
	FeedURL     string
	Weight      float64
}

func (s RSSSource) Name() string         { return s.DisplayName }
func (s RSSSource) Base() string         { return s.BaseURL }
func (s RSSSource) Reliability() float64 { return s.Weight }
func (RSSSource) sealed()                {}

// Selectors are the goquery selectors used to pull articles out of a page.
type Selectors struct {
	Article string `yaml:"article"`
	Title   string `yaml:"title"`
	Link    string `yaml:"link"`
	Date    string `yaml:"date"`
}

// WithDefaults fills empty selectors.
func (s Selectors) WithDefaults() Selectors {
	if s.Article == "" {
		s.Article = "article"
	}
	if s.Title == "" {
		s.Title = "h2 a"
	}
	if s.Link == "" {
		s.Link = "a"
	}
	if s.Date == "" {
		s.Date = "time"
	}
	return s
}

type HTMLSource struct {
	DisplayName string
	BaseURL     string
	// SearchURL may contain a {query} placeholder.
	SearchURL string
	Weight    float64
	Selectors Selectors
}

func (s HTMLSource) Name() string         { return s.DisplayName }
func (s HTMLSource) Base() string         { return s.BaseURL }
func (s HTMLSource) Reliability() float64 { return s.Weight }
func (HTMLSource) sealed()                {}

// Endpoint returns the page to scrape for query: the filled search
// template when both are present, the base URL otherwise.
func (s HTMLSource) Endpoint(query string) string {
	query = strings.TrimSpace(query)
	if query == "" || s.SearchURL == "" {
		return s.BaseURL
	}
	return strings.ReplaceAll(s.SearchURL, "{query}", url.QueryEscape(query))
}

type fileFormat struct {
	Sources []sourceRecord `yaml:"sources"`
}

type sourceRecord struct {
	Name        string     `yaml:"name"`
	Kind        string     `yaml:"kind"`
	BaseURL     string     `yaml:"base_url"`
	FeedURL     string     `yaml:"feed_url"`
	SearchURL   string     `yaml:"search_url"`
	Reliability float64    `yaml:"reliability"`
	Selectors   *Selectors `yaml:"selectors"`
}

// Load reads the source table from path, or the embedded defaults when
// path is empty.
func Load(path string) ([]Source, error) {
	data := defaultSourcesYAML
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, &config.Error{Key: "SOURCES_FILE", Reason: err.Error()}
		}
		data = raw
	}
	return Parse(data)
}

// Parse decodes and validates a YAML source table.
func Parse(data []byte) ([]Source, error) {
	var file fileFormat
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &config.Error{Key: "SOURCES_FILE", Reason: fmt.Sprintf("parse YAML: %v", err)}
	}
	if len(file.Sources) == 0 {
		return nil, &config.Error{Key: "SOURCES_FILE", Reason: "no sources configured"}
	}

	out := make([]Source, 0, len(file.Sources))
	seen := make(map[string]struct{}, len(file.Sources))
	for i, rec := range file.Sources {
		src, err := rec.build()
		if err != nil {
			return nil, &config.Error{Key: fmt.Sprintf("sources[%d]", i), Reason: err.Error()}
		}
		key := strings.ToLower(src.Name())
		if _, dup := seen[key]; dup {
			return nil, &config.Error{Key: fmt.Sprintf("sources[%d]", i), Reason: fmt.Sprintf("duplicate source name %q", src.Name())}
		}
		seen[key] = struct{}{}
		out = append(out, src)
	}
	return out, nil
}

func (r sourceRecord) build() (Source, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, fmt.Errorf("name must not be empty")
	}
	if r.Reliability < 0 || r.Reliability > 1 {
		return nil, fmt.Errorf("%s: reliability %.2f outside [0,1]", name, r.Reliability)
	}
	if err := validateURL("base_url", r.BaseURL); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	switch strings.ToLower(strings.TrimSpace(r.Kind)) {
	case "rss":
		if r.Selectors != nil {
			return nil, fmt.Errorf("%s: selectors are only valid for html sources", name)
		}
		if err := validateURL("feed_url", r.FeedURL); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return RSSSource{
			DisplayName: name,
			BaseURL:     strings.TrimSpace(r.BaseURL),
			FeedURL:     strings.TrimSpace(r.FeedURL),
			Weight:      r.Reliability,
		}, nil
	case "html":
		if r.FeedURL != "" {
			return nil, fmt.Errorf("%s: feed_url is only valid for rss sources", name)
		}
		if r.SearchURL != "" {
			if err := validateURL("search_url", strings.ReplaceAll(r.SearchURL, "{query}", "q")); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		}
		sel := Selectors{}
		if r.Selectors != nil {
			sel = *r.Selectors
		}
		return HTMLSource{
			DisplayName: name,
			BaseURL:     strings.TrimSpace(r.BaseURL),
			SearchURL:   strings.TrimSpace(r.SearchURL),
			Weight:      r.Reliability,
			Selectors:   sel.WithDefaults(),
		}, nil
	default:
		return nil, fmt.Errorf("%s: unknown kind %q (want rss or html)", name, r.Kind)
	}
}

func validateURL(field, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", field)
	}
	return nil
}
