package model

// Reply the only response shape clients ever receive, on success and on every failure.
type Reply struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// BuildReply wraps content in an assistant-role reply.
func BuildReply(content string) Reply {
	return Reply{Role: RoleAssistant, Content: content}
}
