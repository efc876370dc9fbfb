// Package search provides the external search providers the research agent
// calls as tools: arXiv for academic papers and DuckDuckGo for web results.
//
// Both providers are best-effort. Failures are logged and degrade to an
// empty result set so the agent loop continues with reduced information
// instead of aborting.
package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/saraswati/saraswati/pkg/paperrank"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const arxivUserAgent = "saraswati-research-agent/0.1"

// ArxivClient queries the arXiv Atom API. No API key required.
type ArxivClient struct {
	client *http.Client
	logger zerolog.Logger
}

// NewArxivClient creates an arXiv client with a modest timeout.
func NewArxivClient(logger zerolog.Logger) *ArxivClient {
	return &ArxivClient{
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// SearchPapers returns up to maxResults papers matching the query, sorted by
// arXiv relevance. Returns an empty slice on any failure.
func (c *ArxivClient) SearchPapers(ctx context.Context, query string, maxResults int) []paperrank.Paper {
	papers, err := c.search(ctx, query, maxResults)
	if err != nil {
		c.logger.Warn().Err(err).Str("query", query).Msg("arXiv search failed")
		return nil
	}
	c.logger.Info().Int("count", len(papers)).Str("query", query).Msg("arXiv search complete")
	return papers
}

func (c *ArxivClient) search(ctx context.Context, query string, maxResults int) ([]paperrank.Paper, error) {
	q := buildArxivQuery(query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	endpoint := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", arxivUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]paperrank.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		id := extractArxivID(entry.ID)
		if id == "" {
			continue
		}

		p := paperrank.Paper{
			ArxivID:  id,
			Title:    strings.Join(strings.Fields(entry.Title), " "),
			Abstract: strings.TrimSpace(entry.Summary),
		}
		for _, a := range entry.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			p.Published = t.Format("2006-01-02")
		}
		for _, link := range entry.Links {
			if link.Title == "pdf" {
				p.PDFURL = link.Href
			}
		}
		for _, cat := range entry.Categories {
			p.Categories = append(p.Categories, cat.Term)
		}

		papers = append(papers, p)
	}
	return papers, nil
}

// buildArxivQuery constructs the search_query parameter from free text.
func buildArxivQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}
	for i, term := range terms {
		terms[i] = url.QueryEscape(term)
	}
	return "all:" + strings.Join(terms, "+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Authors    []arxivAuthor   `xml:"author"`
	Links      []arxivLink     `xml:"link"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// extractArxivID pulls the versioned arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2310.11511v1" -> "2310.11511v1").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	return idURL[idx+len(prefix):]
}
