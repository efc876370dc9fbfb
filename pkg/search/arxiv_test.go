package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is All
 You Need</title>
    <summary>  The dominant sequence transduction models are based on RNNs.  </summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <link href="http://arxiv.org/abs/1706.03762v7" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v7" rel="related" type="application/pdf"/>
    <category term="cs.CL"/>
    <category term="cs.LG"/>
  </entry>
  <entry>
    <id>http://example.com/not-an-arxiv-id</id>
    <title>Broken entry</title>
  </entry>
</feed>`

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).Level(zerolog.Disabled)
}

func TestArxivSearchPapers(t *testing.T) {
	t.Run("should parse the Atom feed", func(t *testing.T) {
		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			fmt.Fprint(w, sampleFeed)
		}))
		defer srv.Close()

		orig := arxivAPIBase
		arxivAPIBase = srv.URL
		defer func() { arxivAPIBase = orig }()

		papers := NewArxivClient(testLogger()).SearchPapers(context.Background(), "attention mechanisms", 10)
		require.Len(t, papers, 1) // entry without an /abs/ id is skipped

		p := papers[0]
		assert.Equal(t, "1706.03762v7", p.ArxivID)
		assert.Equal(t, "Attention Is All You Need", p.Title)
		assert.Equal(t, "The dominant sequence transduction models are based on RNNs.", p.Abstract)
		assert.Equal(t, "2017-06-12", p.Published)
		assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, p.Authors)
		assert.Equal(t, "http://arxiv.org/pdf/1706.03762v7", p.PDFURL)
		assert.Equal(t, []string{"cs.CL", "cs.LG"}, p.Categories)

		assert.Contains(t, gotQuery, "search_query=all:attention+mechanisms")
		assert.Contains(t, gotQuery, "max_results=10")
	})

	t.Run("should return empty on server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		orig := arxivAPIBase
		arxivAPIBase = srv.URL
		defer func() { arxivAPIBase = orig }()

		papers := NewArxivClient(testLogger()).SearchPapers(context.Background(), "anything", 5)
		assert.Empty(t, papers)
	})

	t.Run("should return empty for a blank query", func(t *testing.T) {
		papers := NewArxivClient(testLogger()).SearchPapers(context.Background(), "   ", 5)
		assert.Empty(t, papers)
	})
}

func TestExtractArxivID(t *testing.T) {
	assert.Equal(t, "2310.11511v1", extractArxivID("http://arxiv.org/abs/2310.11511v1"))
	assert.Equal(t, "", extractArxivID("http://example.com/2310.11511"))
}
