// Package paperrank scores, ranks, and deduplicates paper search results.
//
// All functions are pure: given the same inputs (including the reference
// time), they produce the same outputs. This keeps the ranking pipeline
// deterministic and directly testable without a live search backend.
package paperrank

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Credibility is the heuristic trust tier assigned to a paper based solely
// on publication recency.
type Credibility string

const (
	CredibilityHigh      Credibility = "HIGH"
	CredibilityMedium    Credibility = "MEDIUM"
	CredibilityUncertain Credibility = "UNCERTAIN"
)

// Paper is a candidate result from the paper-search provider. ArxivID is the
// uniqueness key; Credibility and AbstractSnippet are filled in when a paper
// is selected for display.
type Paper struct {
	ArxivID         string      `json:"arxiv_id"`
	Title           string      `json:"title"`
	Authors         []string    `json:"authors,omitempty"`
	Abstract        string      `json:"abstract,omitempty"`
	AbstractSnippet string      `json:"abstract_snippet,omitempty"`
	Published       string      `json:"published,omitempty"`
	PDFURL          string      `json:"pdf_url,omitempty"`
	Categories      []string    `json:"categories,omitempty"`
	Credibility     Credibility `json:"credibility,omitempty"`
}

// PublishedYear returns the publication year parsed from the ISO date, or 0
// when the date is missing or unparseable.
func (p Paper) PublishedYear() int {
	if len(p.Published) < 4 {
		return 0
	}
	year, err := strconv.Atoi(p.Published[:4])
	if err != nil {
		return 0
	}
	return year
}

// AssessCredibility labels a paper by publication age. Papers two or more
// years old are HIGH, exactly one year old MEDIUM, anything newer UNCERTAIN.
// A missing or unparseable date is always UNCERTAIN.
func AssessCredibility(p Paper, now time.Time) Credibility {
	year := p.PublishedYear()
	if year == 0 {
		return CredibilityUncertain
	}
	age := now.Year() - year
	switch {
	case age >= 2:
		return CredibilityHigh
	case age >= 1:
		return CredibilityMedium
	default:
		return CredibilityUncertain
	}
}

var credibilityBonus = map[Credibility]float64{
	CredibilityHigh:      3.0,
	CredibilityMedium:    1.5,
	CredibilityUncertain: 0.0,
}

// Score computes a raw additive relevance score for a paper against a query.
// Title hits weigh 2.0 per query token, abstract hits 0.5, plus a credibility
// bonus and a small recency bonus for post-2015 papers. No normalization.
func Score(p Paper, query string, now time.Time) float64 {
	tokens := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		tokens[w] = struct{}{}
	}

	title := strings.ToLower(p.Title)
	abstract := strings.ToLower(p.Abstract)
	if abstract == "" {
		abstract = strings.ToLower(p.AbstractSnippet)
	}

	score := 0.0
	for w := range tokens {
		if strings.Contains(title, w) {
			score += 2.0
		}
		if strings.Contains(abstract, w) {
			score += 0.5
		}
	}

	score += credibilityBonus[AssessCredibility(p, now)]

	if year := p.PublishedYear(); year > 0 {
		if bonus := float64(year-2015) * 0.2; bonus > 0 {
			score += bonus
		}
	}

	return score
}

// Rank returns the topN papers sorted by descending score. The sort is
// stable: papers with equal scores keep their input order.
func Rank(papers []Paper, query string, topN int, now time.Time) []Paper {
	ranked := make([]Paper, len(papers))
	copy(ranked, papers)

	scores := make([]float64, len(ranked))
	for i, p := range ranked {
		scores[i] = Score(p, query, now)
	}
	idx := make([]int, len(ranked))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	if topN > len(idx) {
		topN = len(idx)
	}
	out := make([]Paper, 0, topN)
	for _, i := range idx[:topN] {
		out = append(out, ranked[i])
	}
	return out
}

// Deduplicate drops papers with a repeated ArxivID, keeping the first
// occurrence in its original position. Papers without an ID are dropped.
func Deduplicate(papers []Paper) []Paper {
	seen := map[string]struct{}{}
	out := make([]Paper, 0, len(papers))
	for _, p := range papers {
		if p.ArxivID == "" {
			continue
		}
		if _, dup := seen[p.ArxivID]; dup {
			continue
		}
		seen[p.ArxivID] = struct{}{}
		out = append(out, p)
	}
	return out
}
