package service

import (
	"strings"

	"github.com/finx/finx-pharma/internal/client"
	"github.com/finx/finx-pharma/internal/model"
)

// DefaultHistoryLimit number of most recent messages forwarded to the model.
const DefaultHistoryLimit = 4

// ContextPreamble introduces retrieved context to the model.
const ContextPreamble = "Here is relevant context to help answer the user's question:\n\n"

// ComposePrompt orders the completion input as: system prompt, retrieved context
// (only when there is any), then the last limit history messages in their original order.
func ComposePrompt(block model.ContextBlock, history []model.ChatMessage, systemPrompt string, limit int) []client.Message {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}

	messages := make([]client.Message, 0, len(history)+2)
	messages = append(messages, client.Message{Role: string(model.RoleSystem), Content: systemPrompt})

	if text := strings.TrimSpace(block.Text); text != "" {
		messages = append(messages, client.Message{
			Role:    string(model.RoleSystem),
			Content: ContextPreamble + text,
		})
	}

	for _, m := range history {
		role := m.Role
		if !role.Valid() {
			role = model.RoleUser
		}
		messages = append(messages, client.Message{
			Role:    string(role),
			Content: strings.TrimSpace(m.Content),
		})
	}
	return messages
}
