package scraper

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pitchside/internal/news"
	"pitchside/internal/sources"
)

// fetchHTML scrapes the search page of src for query using its selectors.
func (s *Scraper) fetchHTML(ctx context.Context, src sources.HTMLSource, query string) ([]news.RawArticle, error) {
	endpoint := src.Endpoint(query)
	body, err := s.get(ctx, src, endpoint)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Source: src.Name(), Err: err}
	}

	sel := src.Selectors.WithDefaults()
	scrapedAt := s.now().UTC()
	var items []news.RawArticle

	doc.Find(sel.Article).EachWithBreak(func(i int, el *goquery.Selection) bool {
		if i >= s.maxItems {
			return false
		}

		titleNode := el.Find(sel.Title).First()
		title := strings.Join(strings.Fields(titleNode.Text()), " ")
		if title == "" {
			s.skipItem(src, &ParseError{Source: src.Name(), Err: errMissingTitle})
			return true
		}

		href, ok := titleNode.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			href, _ = el.Find(sel.Link).First().Attr("href")
		}
		if strings.TrimSpace(href) == "" {
			s.skipItem(src, &ParseError{Source: src.Name(), Item: titlePrefix(title), Err: errMissingLink})
			return true
		}
		link, err := resolveLink(src.Base(), href)
		if err != nil {
			s.skipItem(src, &ParseError{Source: src.Name(), Item: titlePrefix(title), Err: err})
			return true
		}

		dateNode := el.Find(sel.Date).First()
		rawDate, ok := dateNode.Attr("datetime")
		if !ok {
			rawDate = dateNode.Text()
		}
		rawDate = strings.TrimSpace(rawDate)

		items = append(items, news.RawArticle{
			Title:        title,
			URL:          link,
			Source:       src.Name(),
			PublishedRaw: rawDate,
			PublishedAt:  parseDate(rawDate),
			Body:         extractSummary(el, titleNode),
			Reliability:  src.Reliability(),
			ScrapedAt:    scrapedAt,
		})
		return true
	})

	return items, nil
}

// extractSummary takes the first paragraph of the article block, or the
// block text minus the title when there is none.
func extractSummary(el, title *goquery.Selection) string {
	if p := strings.Join(strings.Fields(el.Find("p").First().Text()), " "); p != "" {
		return p
	}
	text := strings.Join(strings.Fields(el.Text()), " ")
	heading := strings.Join(strings.Fields(title.Text()), " ")
	return strings.TrimSpace(strings.Replace(text, heading, "", 1))
}
