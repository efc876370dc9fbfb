package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// webAPIBase is the DuckDuckGo Instant Answer endpoint. Free, no key
// required. A var so tests can point it at an httptest server.
var webAPIBase = "https://api.duckduckgo.com/"

// WebResult is a single web search hit.
type WebResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// WebClient searches the web via the DuckDuckGo Instant Answer API. The
// agent uses it to cross-verify paper claims against web sources.
type WebClient struct {
	client *http.Client
	logger zerolog.Logger
}

// NewWebClient creates a web search client with a short timeout.
func NewWebClient(logger zerolog.Logger) *WebClient {
	return &WebClient{
		client: &http.Client{Timeout: 8 * time.Second},
		logger: logger,
	}
}

// SearchWeb returns up to maxResults results with title, snippet, and url.
// Returns an empty slice on any failure.
func (c *WebClient) SearchWeb(ctx context.Context, query string, maxResults int) []WebResult {
	results, err := c.search(ctx, query, maxResults)
	if err != nil {
		c.logger.Warn().Err(err).Str("query", query).Msg("web search failed")
		return nil
	}
	c.logger.Info().Int("count", len(results)).Str("query", query).Msg("web search complete")
	return results
}

// instant answer response fields we care about
type ddgResponse struct {
	Heading       string     `json:"Heading"`
	Abstract      string     `json:"Abstract"`
	AbstractURL   string     `json:"AbstractURL"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

type ddgTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

func (c *WebClient) search(ctx context.Context, query string, maxResults int) ([]WebResult, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, webAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search returned HTTP %d", resp.StatusCode)
	}

	var data ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("parsing web search response: %w", err)
	}

	var results []WebResult

	if data.Abstract != "" {
		title := data.Heading
		if title == "" {
			title = query
		}
		results = append(results, WebResult{
			Title:   title,
			Snippet: data.Abstract,
			URL:     data.AbstractURL,
		})
	}

	for _, topic := range data.RelatedTopics {
		if len(results) >= maxResults {
			break
		}
		if topic.Text == "" {
			continue
		}
		title := topic.Text
		if len(title) > 80 {
			title = title[:80]
		}
		results = append(results, WebResult{
			Title:   title,
			Snippet: topic.Text,
			URL:     topic.FirstURL,
		})
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
