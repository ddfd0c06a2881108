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

const (
	bingSearchEndpoint = "https://api.bing.microsoft.com/v7.0/search"
	bingMarket         = "en-US"
)

// BingProvider queries the Bing Web Search v7 API.
type BingProvider struct {
	key      string
	endpoint string
	client   *http.Client
	limit    int
	logger   *zap.Logger
}

type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

// Search implements Provider.
func (p *BingProvider) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("mkt", bingMarket)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.key)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("bing search failed", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchEngine, resp.StatusCode)
	}

	var body bingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	if body.WebPages.Value == nil {
		return nil, fmt.Errorf("%w: response missing webPages", domain.ErrSearchEngine)
	}

	hits := make([]domain.SearchHit, 0, len(body.WebPages.Value))
	for _, v := range body.WebPages.Value {
		hits = append(hits, domain.SearchHit{Name: v.Name, URL: v.URL, Snippet: v.Snippet})
	}
	return truncate(hits, p.limit), nil
}
