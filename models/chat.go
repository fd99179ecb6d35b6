package models

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the two recognized values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ChatMessage represents one turn of a conversation supplied by the caller.
// History is never persisted server-side; it exists only within one request.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatSource is one passage that was in context when the answer was
// generated. Only the raw text crosses this boundary; retrieval scores and
// metadata are dropped.
type ChatSource struct {
	Content string `json:"content"`
}

// ChatAnswer is the final response of the chat pipeline.
type ChatAnswer struct {
	Answer  string       `json:"answer"`
	Sources []ChatSource `json:"sources"`
}
