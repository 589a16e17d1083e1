// Package insight asks a chat model for a short pre-match brief built from a
// team summary. It is optional: without an API key every call fails with
// ErrDisabled and the pipeline carries on without a brief.
package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"pitchside/internal/news"
)

const maxHeadlines = 8

// ErrDisabled is returned when no API key was configured.
var ErrDisabled = errors.New("insight disabled: missing OPENAI_API_KEY")

// Brief is the model's reading of a team's news.
type Brief struct {
	Outlook   string   `json:"outlook"`
	Headline  string   `json:"headline"`
	KeyPoints []string `json:"key_points"`
	Risks     []string `json:"risks"`
}

// Request carries the summary and the headlines it was built from.
type Request struct {
	Summary   news.TeamSummary
	Opponent  string
	Headlines []news.ProcessedArticle
}

// Briefer abstracts brief generation.
type Briefer interface {
	Brief(ctx context.Context, req Request) (Brief, error)
	Ready() bool
}

// Client implements Briefer with the OpenAI chat completion API.
type Client struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewClient builds a Client. With an empty apiKey the client is inert.
func NewClient(apiKey, model, baseURL string, logger zerolog.Logger) *Client {
	c := &Client{model: model, logger: logger}
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		c.client = openai.NewClientWithConfig(cfg)
	}
	return c
}

// Ready indicates whether the client can make calls.
func (c *Client) Ready() bool {
	return c.client != nil
}

const systemPrompt = `You are a football analyst preparing short pre-match notes for a betting model.
You receive aggregated news statistics for one team and a list of recent headlines with their topic category and sentiment.
Judge only from the material given. Do not invent injuries, transfers or results.

Return JSON only, with no surrounding text:
{
  "outlook": "positive" | "neutral" | "negative",
  "headline": "one sentence on the team's situation",
  "key_points": ["at most 4 short points"],
  "risks": ["at most 3 short risks, empty if none"]
}`

// Brief asks the model for a brief of req.
func (c *Client) Brief(ctx context.Context, req Request) (Brief, error) {
	if !c.Ready() {
		return Brief{}, ErrDisabled
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return Brief{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Brief{}, errors.New("no choices returned by OpenAI")
	}

	content := cleanupResponse(resp.Choices[0].Message.Content)
	var out Brief
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		c.logger.Warn().Err(err).Str("content", trimText(content, 200)).Msg("failed to parse OpenAI response")
		return Brief{}, fmt.Errorf("parse openai response: %w", err)
	}
	out.Outlook = strings.ToLower(strings.TrimSpace(out.Outlook))
	return out, nil
}

func userPrompt(req Request) string {
	s := req.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "Team: %s\n", s.TeamID)
	if req.Opponent != "" {
		fmt.Fprintf(&b, "Next opponent: %s\n", req.Opponent)
	}
	fmt.Fprintf(&b, "Articles: %d (positive %d, negative %d)\n", s.ArticleCount, s.PositiveCount, s.NegativeCount)
	fmt.Fprintf(&b, "Mean sentiment: %.2f\nMean source reliability: %.2f\n", s.MeanSentiment, s.MeanReliability)

	b.WriteString("Categories:")
	for _, cat := range news.Categories {
		if n := s.CategoryCount(cat); n > 0 {
			fmt.Fprintf(&b, " %s=%d", cat, n)
		}
	}
	b.WriteString("\n")

	if len(s.Entities) > 0 {
		b.WriteString("Key players mentioned:")
		for _, e := range s.Entities {
			fmt.Fprintf(&b, " %s (%s, %.2f);", e.Name, e.Role, e.Importance)
		}
		b.WriteString("\n")
	}

	headlines := append([]news.ProcessedArticle(nil), req.Headlines...)
	sort.SliceStable(headlines, func(i, j int) bool {
		return headlines[i].Confidence > headlines[j].Confidence
	})
	if len(headlines) > maxHeadlines {
		headlines = headlines[:maxHeadlines]
	}
	b.WriteString("Headlines:\n")
	for _, h := range headlines {
		fmt.Fprintf(&b, "- [%s %+.2f] %s\n", h.Category, h.Sentiment, trimText(h.Title, 160))
	}
	b.WriteString("Return the JSON.")
	return b.String()
}

func trimText(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max])
}

// cleanupResponse removes code fences around the JSON body.
func cleanupResponse(s string) string {
	c := strings.TrimSpace(s)
	if strings.HasPrefix(c, "```") {
		if idx := strings.Index(c, "\n"); idx != -1 {
			c = c[idx+1:]
		}
		c = strings.TrimSuffix(c, "```")
		c = strings.TrimSpace(c)
	}
	return c
}
