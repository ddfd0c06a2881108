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

const searchAPIEndpoint = "https://www.searchapi.io/api/v1/search"

// SearchAPIProvider queries SearchApi.io. Answer-box, knowledge-graph and
// related-question entries supplement the organic results.
type SearchAPIProvider struct {
	key      string
	endpoint string
	client   *http.Client
	limit    int
	logger   *zap.Logger
}

type searchAPIResponse struct {
	AnswerBox struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Answer  string `json:"answer"`
		Snippet string `json:"snippet"`
	} `json:"answer_box"`
	KnowledgeGraph struct {
		Title       string `json:"title"`
		Website     string `json:"website"`
		Description string `json:"description"`
	} `json:"knowledge_graph"`
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	RelatedQuestions []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Source   struct {
			Link string `json:"link"`
		} `json:"source"`
	} `json:"related_questions"`
}

// Search implements Provider.
func (p *SearchAPIProvider) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("engine", "google")
	params.Set("num", strconv.Itoa(roundUpTen(p.limit)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.key)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("searchapi search failed", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchEngine, resp.StatusCode)
	}

	var body searchAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	if body.OrganicResults == nil {
		return nil, fmt.Errorf("%w: response missing organic_results", domain.ErrSearchEngine)
	}

	var hits []domain.SearchHit
	if snippet := firstNonEmpty(body.AnswerBox.Answer, body.AnswerBox.Snippet); body.AnswerBox.Link != "" && snippet != "" {
		hits = append(hits, domain.SearchHit{
			Name:    body.AnswerBox.Title,
			URL:     body.AnswerBox.Link,
			Snippet: snippet,
		})
	}
	if body.KnowledgeGraph.Website != "" && body.KnowledgeGraph.Description != "" {
		hits = append(hits, domain.SearchHit{
			Name:    body.KnowledgeGraph.Title,
			URL:     body.KnowledgeGraph.Website,
			Snippet: body.KnowledgeGraph.Description,
		})
	}
	for _, o := range body.OrganicResults {
		hits = append(hits, domain.SearchHit{Name: o.Title, URL: o.Link, Snippet: o.Snippet})
	}
	for _, q := range body.RelatedQuestions {
		if q.Source.Link != "" && q.Answer != "" {
			hits = append(hits, domain.SearchHit{Name: q.Question, URL: q.Source.Link, Snippet: q.Answer})
		}
	}
	return truncate(hits, p.limit), nil
}
