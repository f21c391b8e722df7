package model

import (
	"encoding/json"
	"strings"
)

// Role conversation role
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ChatMessage one normalized conversation turn. Content is always plain, trimmed text.
type ChatMessage struct {
	ID      string `json:"id,omitempty"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest request body of the chat endpoint and of each WebSocket frame.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// contentPart one element of multi-part message content
type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// wireMessage the shapes clients actually send: content as a string, content as
// a list of parts, or a separate parts list.
type wireMessage struct {
	ID      string          `json:"id"`
	Role    Role            `json:"role"`
	Content json.RawMessage `json:"content"`
	Parts   json.RawMessage `json:"parts"`
}

// UnmarshalJSON accepts every supported content shape and keeps the extracted text.
// Content that cannot be interpreted becomes an empty string instead of an error.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	m.ID = w.ID
	m.Role = w.Role
	m.Content = ExtractText(w.Content)
	if m.Content == "" && (len(w.Content) == 0 || string(w.Content) == "null") {
		m.Content = ExtractText(w.Parts)
	}
	return nil
}

// ExtractText returns the trimmed text of raw message content. Strings are used as-is;
// arrays contribute their first part of type "text".
func ExtractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err == nil {
		for _, p := range parts {
			if p.Type == "text" {
				return strings.TrimSpace(p.Text)
			}
		}
	}
	return ""
}

// LatestUserText returns the trimmed content of the last user-role message.
func LatestUserText(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}
