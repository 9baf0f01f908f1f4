package models

// Session represents a named conversation persisted by the remote session API. The
// Messages field is only populated on the session detail endpoint; list responses
// carry summaries with an empty message slice.
type Session struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Messages []Message `json:"messages,omitempty"`
}

// Message represents one turn of a conversation. Messages are immutable once created
// and are only ever appended to a session's ordered sequence.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role represents the role of a message participant.
type Role string

const (
	// RoleUser represents a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant represents a reply produced by the model behind the remote API.
	// Any role other than RoleUser is rendered as an assistant message.
	RoleAssistant Role = "assistant"
)
