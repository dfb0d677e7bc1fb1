package conversation

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a rendered conversation. A zero Timestamp marks
// an instant that could not be parsed; renderers show a sentinel instead
// of dropping the message.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Expand projects a persisted record into its two messages, user turn
// first. Both carry the record's creation time.
func Expand(rec Record) [2]Message {
	return [2]Message{
		{Role: RoleUser, Content: rec.Question, Timestamp: rec.CreatedAt},
		{Role: RoleAssistant, Content: rec.Answer, Timestamp: rec.CreatedAt},
	}
}
