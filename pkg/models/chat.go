package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole represents the role of a chat message sender.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ValidChatRoles contains all valid chat role values.
var ValidChatRoles = []ChatRole{
	ChatRoleUser,
	ChatRoleAssistant,
}

// IsValidChatRole checks if the given role is valid.
func IsValidChatRole(r ChatRole) bool {
	for _, v := range ValidChatRoles {
		if v == r {
			return true
		}
	}
	return false
}

// ChatMessage is one persisted message of a conversation.
type ChatMessage struct {
	ID        int64     `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionInfo describes an active session in the registry.
type SessionInfo struct {
	SessionID string    `json:"session_id"`
	LastSeen  time.Time `json:"last_seen"`
}

// Stream event types emitted on the SSE chat endpoint.
const (
	StreamEventSession = "session"
	StreamEventContent = "content"
	StreamEventDone    = "done"
	StreamEventError   = "error"
)

// StreamEvent is one SSE payload on the streaming chat endpoint.
type StreamEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Index     *int   `json:"index,omitempty"`
	Error     string `json:"error,omitempty"`
}
