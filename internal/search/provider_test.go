package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/config"
	"github.com/searchforge/searchforge/internal/domain"
)

func testServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewProviderDispatch(t *testing.T) {
	cfg := config.SearchConfig{Timeout: time.Second, ReferenceCount: 8}
	logger := zap.NewNop()

	cases := map[string]any{
		"bing":       &BingProvider{},
		"google":     &GoogleProvider{},
		"serper":     &SerperProvider{},
		"searchapi":  &SearchAPIProvider{},
		"search1api": &Search1APIProvider{},
		"searxng":    &SearXNGProvider{},
	}
	for name, want := range cases {
		cfg.Provider = name
		p, err := NewProvider(cfg, logger)
		require.NoError(t, err, name)
		assert.IsType(t, want, p, name)
	}

	cfg.Provider = "altavista"
	_, err := NewProvider(cfg, logger)
	assert.Error(t, err)
}

func TestBingSearch(t *testing.T) {
	srv := testServer(t, http.StatusOK, `{
		"webPages": {"value": [
			{"name": "A", "url": "https://a", "snippet": "sa"},
			{"name": "B", "url": "https://b", "snippet": "sb"}
		]}
	}`)
	p := &BingProvider{key: "k", endpoint: srv.URL, client: srv.Client(), limit: 8, logger: zap.NewNop()}

	hits, err := p.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []domain.SearchHit{
		{Name: "A", URL: "https://a", Snippet: "sa"},
		{Name: "B", URL: "https://b", Snippet: "sb"},
	}, hits)
}

func TestBingSearchTruncatesToLimit(t *testing.T) {
	srv := testServer(t, http.StatusOK, `{
		"webPages": {"value": [
			{"name": "A", "url": "https://a", "snippet": "sa"},
			{"name": "B", "url": "https://b", "snippet": "sb"},
			{"name": "C", "url": "https://c", "snippet": "sc"}
		]}
	}`)
	p := &BingProvider{key: "k", endpoint: srv.URL, client: srv.Client(), limit: 2, logger: zap.NewNop()}

	hits, err := p.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestBingSearchErrorStatus(t *testing.T) {
	srv := testServer(t, http.StatusUnauthorized, `{}`)
	p := &BingProvider{key: "bad", endpoint: srv.URL, client: srv.Client(), limit: 8, logger: zap.NewNop()}

	_, err := p.Search(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrSearchEngine)
}

func TestBingSearchMissingFieldFails(t *testing.T) {
	srv := testServer(t, http.StatusOK, `{"unexpected": true}`)
	p := &BingProvider{key: "k", endpoint: srv.URL, client: srv.Client(), limit: 8, logger: zap.NewNop()}

	_, err := p.Search(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrSearchEngine)
}

func TestSerperSearchFoldsKnowledgeGraphAndAnswerBox(t *testing.T) {
	srv := testServer(t, http.StatusOK, `{
		"knowledgeGraph": {"title": "KG", "website": "https://kg", "description": "kg desc"},
		"answerBox": {"title": "AB", "url": "https://ab", "answer": "ab answer"},
		"organic": [{"title": "O", "link": "https://o", "snippet": "so"}]
	}`)
	p := &SerperProvider{key: "k", endpoint: srv.URL, client: srv.Client(), limit: 8, logger: zap.NewNop()}

	hits, err := p.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "KG", hits[0].Name)
	assert.Equal(t, "AB", hits[1].Name)
	assert.Equal(t, "ab answer", hits[1].Snippet)
	assert.Equal(t, "O", hits[2].Name)
}

func TestSearXNGSearch(t *testing.T) {
	srv := testServer(t, http.StatusOK, `{
		"results": [{"title": "T", "url": "https://t", "content": "c"}]
	}`)
	p := &SearXNGProvider{baseURL: srv.URL, client: srv.Client(), limit: 8, logger: zap.NewNop()}

	hits, err := p.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, domain.SearchHit{Name: "T", URL: "https://t", Snippet: "c"}, hits[0])
}

func TestSearXNGMissingResultsDegradesToEmpty(t *testing.T) {
	srv := testServer(t, http.StatusOK, `{"unrelated": 1}`)
	p := &SearXNGProvider{baseURL: srv.URL, client: srv.Client(), limit: 8, logger: zap.NewNop()}

	hits, err := p.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRoundUpTen(t *testing.T) {
	assert.Equal(t, 10, roundUpTen(8))
	assert.Equal(t, 10, roundUpTen(10))
	assert.Equal(t, 20, roundUpTen(11))
}
