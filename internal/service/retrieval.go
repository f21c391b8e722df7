package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/finx/finx-pharma/internal/model"
	"go.uber.org/zap"
)

// WebSearcher live web search provider
type WebSearcher interface {
	Search(ctx context.Context, query string, numResults int) ([]model.WebResult, error)
}

// RetrievalService picks the context source for a query: stored documents first,
// then the web when stored retrieval gave nothing or the user asked for fresh data.
type RetrievalService struct {
	knowledge    *KnowledgeService // nil when no vector store is configured
	web          WebSearcher       // nil when no web search is configured
	numResults   int
	excerptChars int
	logger       *zap.Logger
}

// NewRetrievalService either source may be nil.
func NewRetrievalService(knowledge *KnowledgeService, web WebSearcher, numResults, excerptChars int, logger *zap.Logger) *RetrievalService {
	if numResults <= 0 {
		numResults = 3
	}
	if excerptChars <= 0 {
		excerptChars = 500
	}
	return &RetrievalService{
		knowledge:    knowledge,
		web:          web,
		numResults:   numResults,
		excerptChars: excerptChars,
		logger:       logger,
	}
}

// KnowledgeConfigured reports whether stored retrieval is available.
func (s *RetrievalService) KnowledgeConfigured() bool {
	return s.knowledge != nil
}

// WebConfigured reports whether web search is available.
func (s *RetrievalService) WebConfigured() bool {
	return s.web != nil
}

// Retrieve never fails: a source that errors is logged and counts as empty.
func (s *RetrievalService) Retrieve(ctx context.Context, query, namespace string, c model.ClassificationResult) model.ContextBlock {
	if s.knowledge != nil && c.IsDomainQuery {
		if text := s.retrieveStored(ctx, query, namespace); text != "" {
			return model.ContextBlock{SourceKind: model.SourceStored, Text: text}
		}
	}

	if s.web != nil && (c.IsWebSearchIntent || c.IsDomainQuery) {
		if text := s.retrieveWeb(ctx, query); text != "" {
			return model.ContextBlock{SourceKind: model.SourceWeb, Text: text}
		}
	}

	return model.EmptyContext()
}

func (s *RetrievalService) retrieveStored(ctx context.Context, query, namespace string) string {
	results, err := s.knowledge.SearchKnowledge(ctx, query, namespace)
	if err != nil {
		s.logger.Warn("stored retrieval failed",
			zap.String("stage", "retrieve"),
			zap.String("collaborator", "knowledge"),
			zap.String("namespace", namespace),
			zap.Error(err))
		return ""
	}
	return s.knowledge.BuildContext(results)
}

func (s *RetrievalService) retrieveWeb(ctx context.Context, query string) string {
	results, err := s.web.Search(ctx, query, s.numResults)
	if err != nil {
		s.logger.Warn("web retrieval failed",
			zap.String("stage", "retrieve"),
			zap.String("collaborator", "webSearch"),
			zap.Error(err))
		return ""
	}
	if len(results) > s.numResults {
		results = results[:s.numResults]
	}
	return FormatWebResults(results, s.excerptChars)
}

// FormatWebResults renders results as labeled blocks in provider order. A result with
// no title, URL or text contributes nothing.
func FormatWebResults(results []model.WebResult, excerptChars int) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		excerpt := truncateRunes(strings.TrimSpace(r.Text), excerptChars)
		if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.URL) == "" && excerpt == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Source: %s\nURL: %s\n%s", r.Title, r.URL, excerpt))
	}
	return strings.Join(blocks, ContextSeparator)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
