package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/domain"
)

// SearXNGProvider queries a self-hosted SearXNG instance. Unlike the hosted
// providers, a response without results degrades to an empty hit list so a
// thin or misconfigured instance does not fail the whole request.
type SearXNGProvider struct {
	baseURL string
	client  *http.Client
	limit   int
	logger  *zap.Logger
}

type searXNGResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements Provider.
func (p *SearXNGProvider) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	params := url.Values{}
	params.Set("q", ":auto "+query)
	params.Set("category", "general")
	params.Set("format", "json")
	params.Set("engines", "bing,google")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("searxng search failed", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchEngine, resp.StatusCode)
	}

	var body searXNGResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	if body.Results == nil {
		p.logger.Warn("searxng returned no results field", zap.String("query", query))
		return nil, nil
	}

	hits := make([]domain.SearchHit, 0, len(body.Results))
	for _, r := range body.Results {
		hits = append(hits, domain.SearchHit{Name: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return truncate(hits, p.limit), nil
}
