package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInstantAnswer = `{
  "Heading": "Transformer (deep learning)",
  "Abstract": "A transformer is a deep learning architecture based on attention.",
  "AbstractURL": "https://en.wikipedia.org/wiki/Transformer_(deep_learning)",
  "RelatedTopics": [
    {"Text": "Attention mechanism - weighting of input tokens", "FirstURL": "https://example.org/attention"},
    {"Text": "", "FirstURL": "https://example.org/empty"},
    {"Text": "BERT - bidirectional encoder representations", "FirstURL": "https://example.org/bert"}
  ]
}`

func TestWebSearch(t *testing.T) {
	t.Run("should map abstract and related topics to results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "transformers", r.URL.Query().Get("q"))
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			fmt.Fprint(w, sampleInstantAnswer)
		}))
		defer srv.Close()

		orig := webAPIBase
		webAPIBase = srv.URL
		defer func() { webAPIBase = orig }()

		results := NewWebClient(testLogger()).SearchWeb(context.Background(), "transformers", 3)
		require.Len(t, results, 3)

		assert.Equal(t, "Transformer (deep learning)", results[0].Title)
		assert.Equal(t, "https://en.wikipedia.org/wiki/Transformer_(deep_learning)", results[0].URL)
		assert.Equal(t, "Attention mechanism - weighting of input tokens", results[1].Snippet)
		assert.Contains(t, results[2].Title, "BERT")
	})

	t.Run("should cap results at maxResults", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, sampleInstantAnswer)
		}))
		defer srv.Close()

		orig := webAPIBase
		webAPIBase = srv.URL
		defer func() { webAPIBase = orig }()

		results := NewWebClient(testLogger()).SearchWeb(context.Background(), "transformers", 1)
		assert.Len(t, results, 1)
	})

	t.Run("should return empty on malformed payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>not json</html>")
		}))
		defer srv.Close()

		orig := webAPIBase
		webAPIBase = srv.URL
		defer func() { webAPIBase = orig }()

		results := NewWebClient(testLogger()).SearchWeb(context.Background(), "transformers", 3)
		assert.Empty(t, results)
	})
}
