package service

import (
	"context"
	"strings"

	"github.com/finx/finx-pharma/internal/client"
	"go.uber.org/zap"
)

// ChatCompleter generation model backend
type ChatCompleter interface {
	Chat(ctx context.Context, messages []client.Message) (string, error)
}

// CompletionService calls the generation model once and always returns displayable text.
type CompletionService struct {
	completer ChatCompleter // nil when no API key was configured at start
	logger    *zap.Logger
}

// NewCompletionService completer may be nil.
func NewCompletionService(completer ChatCompleter, logger *zap.Logger) *CompletionService {
	return &CompletionService{completer: completer, logger: logger}
}

// Configured reports whether a generation backend exists.
func (s *CompletionService) Configured() bool {
	return s != nil && s.completer != nil
}

// Complete errors become MsgGenericFailure, blank output becomes MsgNoResponse.
func (s *CompletionService) Complete(ctx context.Context, messages []client.Message) string {
	if !s.Configured() {
		return MsgNotConfigured
	}

	text, err := s.completer.Chat(ctx, messages)
	if err != nil {
		s.logger.Error("completion failed",
			zap.String("stage", "complete"),
			zap.String("collaborator", "completion"),
			zap.Int("messages", len(messages)),
			zap.Error(err))
		return MsgGenericFailure
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Warn("completion returned no text", zap.String("stage", "complete"))
		return MsgNoResponse
	}
	return text
}
