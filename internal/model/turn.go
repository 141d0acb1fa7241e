package model

import "time"

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	// roleLegacyBot is how older deployments stored assistant turns.
	roleLegacyBot Role = "bot"
)

// Valid reports whether r may be written to chat_history.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn represents a row of the `chat_history` table. Turns are immutable
// once written.
type Turn struct {
	ID        int64     // chat_history.id
	Role      Role      // chat_history.role
	Message   string    // chat_history.message
	CreatedAt time.Time // chat_history.created_at
}

// IsAssistant reports whether the turn was generated by the model.
func (t Turn) IsAssistant() bool {
	return t.Role == RoleAssistant || t.Role == roleLegacyBot
}
