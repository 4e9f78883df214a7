package models

import "time"

// Chat roles, matching the chat-completions API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the wellness assistant conversation.
// Content is stored encrypted; repositories return it as written.
type ChatMessage struct {
	ID        string    `json:"id" firestore:"-"`
	Role      string    `json:"role" firestore:"role"`
	Content   string    `json:"content" firestore:"content"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
