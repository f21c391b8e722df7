package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/finx/finx-pharma/internal/vectorstore"
	"go.uber.org/zap"
)

// ContextSeparator joins retrieved passages.
const ContextSeparator = "\n\n---\n\n"

// Embedder turns text into a vector with the same model used at ingestion.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// KnowledgeService stored-document retrieval over the ingested company filings
type KnowledgeService struct {
	embedder Embedder
	store    vectorstore.Store
	topK     int
	logger   *zap.Logger
}

// NewKnowledgeService creates the knowledge base service.
func NewKnowledgeService(embedder Embedder, store vectorstore.Store, topK int, logger *zap.Logger) *KnowledgeService {
	if topK <= 0 {
		topK = 8
	}
	return &KnowledgeService{
		embedder: embedder,
		store:    store,
		topK:     topK,
		logger:   logger,
	}
}

// SearchKnowledge embeds query and searches namespace.
func (s *KnowledgeService) SearchKnowledge(ctx context.Context, query, namespace string) ([]vectorstore.Match, error) {
	// 1. embed the query
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// 2. search the namespace
	results, err := s.store.Query(ctx, namespace, vector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("query namespace %s: %w", namespace, err)
	}

	s.logger.Debug("knowledge search finished",
		zap.String("namespace", namespace),
		zap.Int("matches", len(results)),
		zap.Float64("topScore", topScore(results)))
	return results, nil
}

// BuildContext joins the text of every match that has any, keeping store order.
func (s *KnowledgeService) BuildContext(results []vectorstore.Match) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		if text := strings.TrimSpace(r.Text()); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, ContextSeparator)
}

func topScore(results []vectorstore.Match) float64 {
	if len(results) == 0 {
		return 0
	}
	return results[0].Score
}
