package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsmesh/internal/crawl/fetcher"
	"newsmesh/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Sample Feed</title>
<item>
  <title>New OpenAI GPT model released</title>
  <link>https://example.com/a</link>
  <description>details about the model</description>
</item>
<item>
  <title>Local bakery wins award</title>
  <link>https://example.com/b</link>
  <description>a nice bakery story</description>
</item>
</channel></rss>`

func TestRSSSource_Crawl_ParsesItemsAndClassifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	f := fetcher.New(fetcher.DefaultConfig(), nil)
	src := NewRSSSource("rss:test", srv.URL, f, nil)

	articles, err := src.Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "ai", articles[0].Category)
	assert.Equal(t, "tech", articles[1].Category)
	assert.Equal(t, "rss:test", articles[0].Source)
	assert.Equal(t, entity.DefaultQualityScore, articles[0].QualityScore)
}

func TestRSSSource_Crawl_EmptyFeedReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := fetcher.New(fetcher.DefaultConfig(), nil)
	src := NewRSSSource("rss:test", srv.URL, f, nil)

	articles, err := src.Crawl(context.Background())
	assert.Error(t, err)
	assert.Empty(t, articles)
}

func TestRSSSource_Crawl_DedupsDuplicateLinks(t *testing.T) {
	feed := `<?xml version="1.0"?><rss version="2.0"><channel>
<item><title>One</title><link>https://example.com/x</link></item>
<item><title>One Again</title><link>https://example.com/x</link></item>
</channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	f := fetcher.New(fetcher.DefaultConfig(), nil)
	src := NewRSSSource("rss:test", srv.URL, f, nil)

	articles, err := src.Crawl(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}
