package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/config"
	"github.com/searchforge/searchforge/internal/domain"
)

// Provider is the single capability the orchestrator needs from a search
// engine: one query in, ordered hits out.
type Provider interface {
	Search(ctx context.Context, query string) ([]domain.SearchHit, error)
}

// Kind names a concrete provider variant.
type Kind string

const (
	KindBing       Kind = "bing"
	KindGoogle     Kind = "google"
	KindSerper     Kind = "serper"
	KindSearchAPI  Kind = "searchapi"
	KindSearch1API Kind = "search1api"
	KindSearXNG    Kind = "searxng"
)

// NewProvider selects a provider variant from configuration. It is a pure
// function of the config; no ambient state is consulted.
func NewProvider(cfg config.SearchConfig, logger *zap.Logger) (Provider, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	limit := cfg.ReferenceCount
	if limit <= 0 {
		limit = 8
	}

	switch Kind(strings.ToLower(cfg.Provider)) {
	case KindBing:
		return &BingProvider{key: cfg.BingKey, endpoint: bingSearchEndpoint, client: client, limit: limit, logger: logger}, nil
	case KindGoogle:
		return &GoogleProvider{key: cfg.GoogleKey, cx: cfg.GoogleCX, endpoint: googleSearchEndpoint, client: client, limit: limit, logger: logger}, nil
	case KindSerper:
		return &SerperProvider{key: cfg.SerperKey, endpoint: serperSearchEndpoint, client: client, limit: limit, logger: logger}, nil
	case KindSearchAPI:
		return &SearchAPIProvider{key: cfg.SearchAPIKey, endpoint: searchAPIEndpoint, client: client, limit: limit, logger: logger}, nil
	case KindSearch1API:
		return &Search1APIProvider{key: cfg.Search1APIKey, endpoint: search1APIEndpoint, client: client, limit: limit, logger: logger}, nil
	case KindSearXNG:
		return &SearXNGProvider{baseURL: cfg.SearXNGBaseURL, client: client, limit: limit, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
}

// roundUpTen rounds the requested result count up to a multiple of ten,
// matching the page sizes Serper and SearchAPI accept.
func roundUpTen(n int) int {
	if n%10 == 0 {
		return n
	}
	return (n/10 + 1) * 10
}

func truncate(hits []domain.SearchHit, limit int) []domain.SearchHit {
	if len(hits) > limit {
		return hits[:limit]
	}
	return hits
}
