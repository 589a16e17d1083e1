package scraper

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"pitchside/internal/news"
	"pitchside/internal/sources"
)

// fetchRSS pulls the feed and normalizes its first maxItems entries.
func (s *Scraper) fetchRSS(ctx context.Context, src sources.RSSSource) ([]news.RawArticle, error) {
	body, err := s.get(ctx, src, src.FeedURL)
	if err != nil {
		return nil, err
	}

	feed, err := s.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Source: src.Name(), Err: err}
	}

	entries := feed.Items
	if len(entries) > s.maxItems {
		entries = entries[:s.maxItems]
	}

	scrapedAt := s.now().UTC()
	items := make([]news.RawArticle, 0, len(entries))
	for _, entry := range entries {
		article, perr := normalizeItem(src, entry, scrapedAt)
		if perr != nil {
			s.skipItem(src, perr)
			continue
		}
		items = append(items, article)
	}
	return items, nil
}

func normalizeItem(src sources.RSSSource, entry *gofeed.Item, scrapedAt time.Time) (news.RawArticle, *ParseError) {
	if entry == nil {
		return news.RawArticle{}, &ParseError{Source: src.Name(), Err: errMissingTitle}
	}
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return news.RawArticle{}, &ParseError{Source: src.Name(), Item: titlePrefix(entry.Link), Err: errMissingTitle}
	}
	link := pickLink(entry)
	if link == "" {
		return news.RawArticle{}, &ParseError{Source: src.Name(), Item: titlePrefix(title), Err: errMissingLink}
	}
	resolved, err := resolveLink(src.Base(), link)
	if err != nil {
		return news.RawArticle{}, &ParseError{Source: src.Name(), Item: titlePrefix(title), Err: err}
	}

	description := entry.Description
	if strings.TrimSpace(description) == "" {
		description = entry.Content
	}

	return news.RawArticle{
		Title:        title,
		URL:          resolved,
		Source:       src.Name(),
		PublishedRaw: strings.TrimSpace(entry.Published),
		PublishedAt:  pickPublished(entry),
		Body:         stripHTML(description),
		Reliability:  src.Reliability(),
		ScrapedAt:    scrapedAt,
	}, nil
}

// pickLink prefers the item link and falls back to a GUID that is itself a
// URL.
func pickLink(entry *gofeed.Item) string {
	if link := strings.TrimSpace(entry.Link); link != "" {
		return link
	}
	guid := strings.TrimSpace(entry.GUID)
	if strings.HasPrefix(guid, "http://") || strings.HasPrefix(guid, "https://") {
		return guid
	}
	return ""
}

func pickPublished(entry *gofeed.Item) *time.Time {
	switch {
	case entry.PublishedParsed != nil:
		t := entry.PublishedParsed.UTC()
		return &t
	case entry.UpdatedParsed != nil:
		t := entry.UpdatedParsed.UTC()
		return &t
	}
	return parseDate(entry.Published)
}

// parseDate accepts the loose date formats found on news pages. Unparseable
// input yields nil.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// stripHTML reduces an HTML fragment to its text with collapsed whitespace.
func stripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
