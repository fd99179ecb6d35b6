package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"legalai-backend/models"
)

// Reranker rescores retrieval candidates with a cross-encoder model
// conditioned on the query, returning them in descending relevance order.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []models.Precedent) ([]models.Precedent, error)
}

// HTTPReranker calls a hosted cross-encoder rerank endpoint.
type HTTPReranker struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewHTTPReranker creates a reranker for the given endpoint. apiKey and
// model may be empty when the endpoint requires neither.
func NewHTTPReranker(endpoint, apiKey, model string) *HTTPReranker {
	return &HTTPReranker{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type rerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

// Rerank scores every candidate against the query and returns the
// candidates sorted by relevance, highest first. Candidates the endpoint
// does not score are dropped.
func (r *HTTPReranker) Rerank(
	ctx context.Context,
	query string,
	candidates []models.Precedent,
) ([]models.Precedent, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Content
	}

	jsonData, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rerank API error: %d - %s", resp.StatusCode, string(body))
	}

	var apiResp rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	reranked := make([]models.Precedent, 0, len(apiResp.Results))
	for _, result := range apiResp.Results {
		if result.Index < 0 || result.Index >= len(candidates) {
			return nil, fmt.Errorf("rerank result index %d out of range", result.Index)
		}
		c := candidates[result.Index]
		c.Score = result.RelevanceScore
		reranked = append(reranked, c)
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	return reranked, nil
}
