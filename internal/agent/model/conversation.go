package model

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ConversationMessage is one recent turn supplied by the backend.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryMessages converts the most recent maxTurns turns into eino messages,
// skipping blank or unknown-role entries. maxTurns <= 0 keeps everything.
func HistoryMessages(history []ConversationMessage, maxTurns int) []*schema.Message {
	recent := trimTail(history, maxTurns)

	out := make([]*schema.Message, 0, len(recent))
	for _, m := range recent {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		switch schema.RoleType(m.Role) {
		case schema.User:
			out = append(out, schema.UserMessage(m.Content))
		case schema.Assistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		}
	}
	return out
}

func trimTail(messages []ConversationMessage, maxTurns int) []ConversationMessage {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}
