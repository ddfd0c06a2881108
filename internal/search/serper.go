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

const serperSearchEndpoint = "https://google.serper.dev/search"

// SerperProvider queries the Serper.dev Google proxy. Knowledge-graph and
// answer-box entries are folded in ahead of the organic results.
type SerperProvider struct {
	key      string
	endpoint string
	client   *http.Client
	limit    int
	logger   *zap.Logger
}

type serperResponse struct {
	KnowledgeGraph struct {
		Title          string `json:"title"`
		DescriptionURL string `json:"descriptionUrl"`
		Website        string `json:"website"`
		Description    string `json:"description"`
	} `json:"knowledgeGraph"`
	AnswerBox struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
		Answer  string `json:"answer"`
	} `json:"answerBox"`
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search implements Provider.
func (p *SerperProvider) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	payload, err := json.Marshal(map[string]any{"q": query, "num": roundUpTen(p.limit)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	req.Header.Set("X-API-KEY", p.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("serper search failed", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchEngine, resp.StatusCode)
	}

	var body serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchEngine, err)
	}
	if body.Organic == nil {
		return nil, fmt.Errorf("%w: response missing organic results", domain.ErrSearchEngine)
	}

	var hits []domain.SearchHit
	if kgURL := firstNonEmpty(body.KnowledgeGraph.DescriptionURL, body.KnowledgeGraph.Website); kgURL != "" && body.KnowledgeGraph.Description != "" {
		hits = append(hits, domain.SearchHit{
			Name:    body.KnowledgeGraph.Title,
			URL:     kgURL,
			Snippet: body.KnowledgeGraph.Description,
		})
	}
	if snippet := firstNonEmpty(body.AnswerBox.Snippet, body.AnswerBox.Answer); body.AnswerBox.URL != "" && snippet != "" {
		hits = append(hits, domain.SearchHit{
			Name:    body.AnswerBox.Title,
			URL:     body.AnswerBox.URL,
			Snippet: snippet,
		})
	}
	for _, o := range body.Organic {
		hits = append(hits, domain.SearchHit{Name: o.Title, URL: o.Link, Snippet: o.Snippet})
	}
	return truncate(hits, p.limit), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
