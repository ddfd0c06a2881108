package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/searchforge/searchforge/internal/domain"
)

const googleSearchEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleProvider queries the Google Programmable Search (Custom Search) API.
type GoogleProvider struct {
	key      string
	cx       string
	endpoint string
	client   *http.Client
	limit    int
	logger   *zap.Logger
}

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search implements Provider.
func (p *GoogleProvider) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	params := url.Values{}
	params.Set("key", p.key)
	params.Set("cx", p.cx)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(p.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("google search failed", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchEngine, resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	if body.Items == nil {
		return nil, fmt.Errorf("%w: response missing items", domain.ErrSearchEngine)
	}

	hits := make([]domain.SearchHit, 0, len(body.Items))
	for _, item := range body.Items {
		hits = append(hits, domain.SearchHit{Name: item.Title, URL: item.Link, Snippet: item.Snippet})
	}
	return truncate(hits, p.limit), nil
}
