package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message of the chat history supplied by the caller.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// RecentUserTurns returns the last n user turns in their original order.
func RecentUserTurns(history []ConversationTurn, n int) []ConversationTurn {
	var users []ConversationTurn
	for _, turn := range history {
		if turn.Role == RoleUser && strings.TrimSpace(turn.Content) != "" {
			users = append(users, turn)
		}
	}
	if n >= 0 && len(users) > n {
		users = users[len(users)-n:]
	}
	return users
}

// LastAssistantTurn returns the most recent assistant reply, if any.
func LastAssistantTurn(history []ConversationTurn) (ConversationTurn, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleAssistant && strings.TrimSpace(history[i].Content) != "" {
			return history[i], true
		}
	}
	return ConversationTurn{}, false
}

// GenerationResult is the parsed final model output.
type GenerationResult struct {
	ReplyBody         string   `json:"reply"`
	FollowUpQuestions []string `json:"followUps"`
}

// ChatResponse is returned by the chat endpoint and the benefits-chat job.
// Evidence is nil only for guard-triggered clarifications.
type ChatResponse struct {
	QuestionType QuestionType `json:"questionType,omitempty"`
	Reply        string       `json:"reply"`
	Evidence     *string      `json:"evidence"`
	FollowUps    []string     `json:"followUps"`
}
