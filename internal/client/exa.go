package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finx/finx-pharma/internal/model"
	"go.uber.org/zap"
)

// ExaClient Exa web search client
type ExaClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewExaClient creates a web search client.
func NewExaClient(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *ExaClient {
	return &ExaClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type exaSearchRequest struct {
	Query      string      `json:"query"`
	NumResults int         `json:"numResults"`
	Contents   exaContents `json:"contents"`
}

type exaContents struct {
	Text bool `json:"text"`
}

type exaSearchResponse struct {
	RequestID string `json:"requestId"`
	Results   []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Text  string `json:"text"`
	} `json:"results"`
}

// Search runs a live search and returns up to numResults hits in provider ranking order.
func (c *ExaClient) Search(ctx context.Context, query string, numResults int) ([]model.WebResult, error) {
	reqBody := exaSearchRequest{
		Query:      query,
		NumResults: numResults,
		Contents:   exaContents{Text: true},
	}

	var searchResp exaSearchResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/search",
		map[string]string{"x-api-key": c.apiKey}, reqBody, &searchResp)
	if err != nil {
		return nil, fmt.Errorf("exa search: %w", err)
	}

	results := make([]model.WebResult, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		results = append(results, model.WebResult{Title: r.Title, URL: r.URL, Text: r.Text})
	}
	if numResults > 0 && len(results) > numResults {
		results = results[:numResults]
	}

	c.logger.Debug("web search finished",
		zap.String("requestId", searchResp.RequestID),
		zap.Int("results", len(results)))

	return results, nil
}
