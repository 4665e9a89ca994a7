package chatstream

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a chat history that can be resumed across runs.
type Conversation struct {
	ID           string
	Model        string
	SystemPrompt string
	Messages     []Message
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewConversation returns an empty conversation with a fresh ID.
func NewConversation(model, systemPrompt string) Conversation {
	now := time.Now()
	return Conversation{
		ID:           uuid.NewString(),
		Model:        model,
		SystemPrompt: systemPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Append adds messages and bumps UpdatedAt.
func (c *Conversation) Append(msgs ...Message) {
	c.Messages = append(c.Messages, msgs...)
	c.UpdatedAt = time.Now()
}

// Arguments returns chat arguments for the conversation. The system prompt,
// when set, is sent as the first message. An empty model falls back to the
// conversation's model.
func (c Conversation) Arguments(model string) ChatArguments {
	if model == "" {
		model = c.Model
	}
	msgs := make([]Message, 0, len(c.Messages)+1)
	if c.SystemPrompt != "" {
		msgs = append(msgs, SystemMessage(c.SystemPrompt))
	}
	msgs = append(msgs, c.Messages...)
	return NewChatArguments(model, msgs)
}
