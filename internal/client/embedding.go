package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EmbeddingClient OpenAI embeddings client
type EmbeddingClient struct {
	apiKey  string
	baseURL string
	model   string
	logger  *zap.Logger
	client  *http.Client
}

// embeddingRequest request body; Input is a single string or a list of strings
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingResponse response body
type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewEmbeddingClient creates an embeddings client. Queries and documents must use the
// same model or the vectors are not comparable.
func NewEmbeddingClient(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) *EmbeddingClient {
	return &EmbeddingClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
	}
}

// Embed returns the vector for a single text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch returns one vector per input text, in input order.
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embeddingRequest{
		Model: c.model,
		Input: texts,
	}

	var embResp embeddingResponse
	err := postJSON(ctx, c.client, c.baseURL+"/embeddings",
		map[string]string{"Authorization": "Bearer " + c.apiKey}, reqBody, &embResp)
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}

	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs: %w", len(embResp.Data), len(texts), ErrEmptyResponse)
	}

	// the API may return items out of order
	embeddings := make([][]float32, len(texts))
	for _, item := range embResp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("embeddings: index %d out of range", item.Index)
		}
		embeddings[item.Index] = item.Embedding
	}
	for i, e := range embeddings {
		if len(e) == 0 {
			return nil, fmt.Errorf("embeddings: input %d: %w", i, ErrEmptyResponse)
		}
	}

	c.logger.Debug("embeddings created",
		zap.Int("count", len(embeddings)),
		zap.Int("dimension", len(embeddings[0])),
		zap.Int("tokens", embResp.Usage.TotalTokens))

	return embeddings, nil
}
