package paperrank

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

func TestAssessCredibility(t *testing.T) {
	t.Run("should label papers two or more years old HIGH", func(t *testing.T) {
		assert.Equal(t, CredibilityHigh, AssessCredibility(Paper{Published: "2024-01-15"}, testNow))
		assert.Equal(t, CredibilityHigh, AssessCredibility(Paper{Published: "2017-11-30"}, testNow))
	})

	t.Run("should label one-year-old papers MEDIUM", func(t *testing.T) {
		assert.Equal(t, CredibilityMedium, AssessCredibility(Paper{Published: "2025-03-02"}, testNow))
	})

	t.Run("should label current-year papers UNCERTAIN", func(t *testing.T) {
		assert.Equal(t, CredibilityUncertain, AssessCredibility(Paper{Published: "2026-02-14"}, testNow))
	})

	t.Run("should label missing or unparseable dates UNCERTAIN", func(t *testing.T) {
		assert.Equal(t, CredibilityUncertain, AssessCredibility(Paper{}, testNow))
		assert.Equal(t, CredibilityUncertain, AssessCredibility(Paper{Published: "n/a"}, testNow))
		assert.Equal(t, CredibilityUncertain, AssessCredibility(Paper{Published: "20"}, testNow))
	})
}

func TestScore(t *testing.T) {
	t.Run("should weight title hits over abstract hits", func(t *testing.T) {
		titleHit := Paper{Title: "Attention is all you need", Published: "2017-06-12"}
		abstractHit := Paper{Title: "Sequence models", Abstract: "attention mechanisms", Published: "2017-06-12"}

		assert.Greater(t, Score(titleHit, "attention", testNow), Score(abstractHit, "attention", testNow))
	})

	t.Run("should be deterministic", func(t *testing.T) {
		p := Paper{Title: "Graph networks", Abstract: "message passing on graphs", Published: "2020-05-01"}
		assert.Equal(t, Score(p, "graph networks", testNow), Score(p, "graph networks", testNow))
	})

	t.Run("should count repeated query tokens once", func(t *testing.T) {
		p := Paper{Title: "Diffusion models"}
		assert.Equal(t, Score(p, "diffusion", testNow), Score(p, "diffusion diffusion", testNow))
	})

	t.Run("should apply recency bonus only for parseable post-2015 years", func(t *testing.T) {
		old := Paper{Published: "2010-01-01"}
		recent := Paper{Published: "2020-01-01"}
		unknown := Paper{}

		// 2010 and unknown both earn only their credibility bonus.
		assert.Equal(t, 3.0, Score(old, "", testNow))
		assert.Equal(t, 0.0, Score(unknown, "", testNow))
		// 2020: HIGH bonus 3.0 + (2020-2015)*0.2 = 4.0.
		assert.InDelta(t, 4.0, Score(recent, "", testNow), 1e-9)
	})
}

func TestRank(t *testing.T) {
	t.Run("should order by descending score and truncate", func(t *testing.T) {
		papers := []Paper{
			{ArxivID: "1", Title: "unrelated", Published: "2020-01-01"},
			{ArxivID: "2", Title: "attention mechanisms explained", Published: "2020-01-01"},
			{ArxivID: "3", Title: "attention", Published: "2020-01-01"},
			{ArxivID: "4", Title: "nothing here"},
		}

		top := Rank(papers, "attention", 2, testNow)
		assert.Len(t, top, 2)
		assert.Equal(t, "2", top[0].ArxivID)
		assert.Equal(t, "3", top[1].ArxivID)
	})

	t.Run("should keep input order for equal scores", func(t *testing.T) {
		papers := []Paper{
			{ArxivID: "a", Title: "same title", Published: "2020-01-01"},
			{ArxivID: "b", Title: "same title", Published: "2020-01-01"},
			{ArxivID: "c", Title: "same title", Published: "2020-01-01"},
		}

		top := Rank(papers, "same", 3, testNow)
		assert.Equal(t, "a", top[0].ArxivID)
		assert.Equal(t, "b", top[1].ArxivID)
		assert.Equal(t, "c", top[2].ArxivID)
	})

	t.Run("should not mutate its input", func(t *testing.T) {
		papers := []Paper{
			{ArxivID: "low", Title: "x"},
			{ArxivID: "high", Title: "query match", Published: "2019-01-01"},
		}
		Rank(papers, "query", 2, testNow)
		assert.Equal(t, "low", papers[0].ArxivID)
	})
}

func TestDeduplicate(t *testing.T) {
	t.Run("should keep first occurrence position", func(t *testing.T) {
		papers := []Paper{
			{ArxivID: "x", Title: "first"},
			{ArxivID: "y"},
			{ArxivID: "x", Title: "second"},
		}

		out := Deduplicate(papers)
		assert.Len(t, out, 2)
		assert.Equal(t, "first", out[0].Title)
		assert.Equal(t, "y", out[1].ArxivID)
	})

	t.Run("should drop papers without an id", func(t *testing.T) {
		out := Deduplicate([]Paper{{Title: "anonymous"}, {ArxivID: "z"}})
		assert.Len(t, out, 1)
		assert.Equal(t, "z", out[0].ArxivID)
	})

	t.Run("should be idempotent", func(t *testing.T) {
		papers := []Paper{}
		for i := 0; i < 6; i++ {
			papers = append(papers, Paper{ArxivID: fmt.Sprintf("p%d", i%3)})
		}

		once := Deduplicate(papers)
		twice := Deduplicate(once)
		assert.Equal(t, once, twice)
	})
}
