package service

import (
	"context"
	"time"

	"github.com/finx/finx-pharma/internal/config"
	"github.com/finx/finx-pharma/internal/model"
	"go.uber.org/zap"
)

// ChatService the per-request pipeline:
// validate → classify → resolve namespace → retrieve → compose → complete → reply.
// It holds no per-request state.
type ChatService struct {
	classifier   *Classifier
	resolver     *NamespaceResolver
	retrieval    *RetrievalService
	completion   *CompletionService
	systemPrompt string
	historyLimit int
	logger       *zap.Logger
}

// Backends which collaborators are configured
type Backends struct {
	Completion bool `json:"completion"`
	Knowledge  bool `json:"knowledge"`
	WebSearch  bool `json:"webSearch"`
}

// NewChatService creates the chat pipeline.
func NewChatService(
	classifier *Classifier,
	resolver *NamespaceResolver,
	retrieval *RetrievalService,
	completion *CompletionService,
	routing config.RoutingConfig,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		classifier:   classifier,
		resolver:     resolver,
		retrieval:    retrieval,
		completion:   completion,
		systemPrompt: routing.SystemPrompt,
		historyLimit: routing.HistoryLimit,
		logger:       logger,
	}
}

// Route classifies query and, for domain queries, resolves its namespace.
func (s *ChatService) Route(query string) (model.ClassificationResult, string) {
	c := s.classifier.Classify(query)
	if !c.IsDomainQuery {
		return c, ""
	}
	return c, s.resolver.Resolve(query)
}

// DefaultNamespace the partition searched when a domain query names no company.
func (s *ChatService) DefaultNamespace() string {
	return s.resolver.Default()
}

// Backends reports configured collaborators.
func (s *ChatService) Backends() Backends {
	return Backends{
		Completion: s.completion.Configured(),
		Knowledge:  s.retrieval.KnowledgeConfigured(),
		WebSearch:  s.retrieval.WebConfigured(),
	}
}

// Reply always returns an assistant reply; failures are carried in the content.
func (s *ChatService) Reply(ctx context.Context, messages []model.ChatMessage) model.Reply {
	start := time.Now()

	if !s.completion.Configured() {
		s.logger.Warn("generation backend not configured", zap.String("stage", "validate"))
		return model.BuildReply(MsgNotConfigured)
	}

	query := model.LatestUserText(messages)
	if query == "" {
		return model.BuildReply(MsgEmptyInput)
	}

	classification, namespace := s.Route(query)

	block := s.retrieval.Retrieve(ctx, query, namespace, classification)

	prompt := ComposePrompt(block, messages, s.systemPrompt, s.historyLimit)

	content := s.completion.Complete(ctx, prompt)

	s.logger.Info("chat reply",
		zap.Bool("domain", classification.IsDomainQuery),
		zap.Bool("webIntent", classification.IsWebSearchIntent),
		zap.String("namespace", namespace),
		zap.String("source", string(block.SourceKind)),
		zap.Int("promptMessages", len(prompt)),
		zap.Duration("elapsed", time.Since(start)))

	return model.BuildReply(content)
}
