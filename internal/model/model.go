package model

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one entry of a transcript. Content grows while an assistant
// turn is streaming; CreatedAt never changes once set.
type ChatTurn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

// Message strips a turn down to what the completion API sees.
func (t ChatTurn) Message() ChatMessage {
	return ChatMessage{Role: t.Role, Content: t.Content}
}
