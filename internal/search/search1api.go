package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/domain"
)

const search1APIEndpoint = "https://api.search1api.com/search"

// Search1APIProvider queries the Search1API aggregation service.
type Search1APIProvider struct {
	key      string
	endpoint string
	client   *http.Client
	limit    int
	logger   *zap.Logger
}

type search1APIResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"results"`
}

// Search implements Provider.
func (p *Search1APIProvider) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	payload, err := json.Marshal(map[string]any{
		"query":          query,
		"max_results":    10,
		"search_service": "google",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("search1api search failed", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchEngine, resp.StatusCode)
	}

	var body search1APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	if body.Results == nil {
		return nil, fmt.Errorf("%w: response missing results", domain.ErrSearchEngine)
	}

	hits := make([]domain.SearchHit, 0, len(body.Results))
	for _, r := range body.Results {
		hits = append(hits, domain.SearchHit{Name: r.Title, URL: r.Link, Snippet: r.Snippet})
	}
	return truncate(hits, p.limit), nil
}
