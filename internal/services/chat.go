package services

import (
	"context"
	"encoding/json"
	"strings"

	"weektodo/backend/internal/ai"
)

const chatSystemPrompt = `You are a productivity assistant for a weekly task planner.
Reply with a JSON object of the form {"message": "<short answer>", "tasks": ["<task>", ...]}.
Suggest between 3 and 5 short, actionable tasks that help with the user's request.
Return only the JSON object, without markdown or commentary.`

// ChatReply is the normalized assistant answer. Tasks is never nil.
type ChatReply struct {
	Message string   `json:"message"`
	Tasks   []string `json:"tasks"`
}

type ChatService interface {
	Chat(ctx context.Context, message string) (ChatReply, error)
}

// Completer is the provider side of the chat proxy.
type Completer interface {
	Complete(ctx context.Context, apiKey string, messages []ai.Message) (string, error)
}

type ChatServiceImpl struct {
	completer Completer
	apiKey    func() string
}

// NewChatService builds the chat proxy. apiKey is consulted on every call so
// that key rotation does not need a restart.
func NewChatService(completer Completer, apiKey func() string) *ChatServiceImpl {
	return &ChatServiceImpl{completer: completer, apiKey: apiKey}
}

func (s *ChatServiceImpl) Chat(ctx context.Context, message string) (ChatReply, error) {
	if message == "" {
		return ChatReply{}, ErrEmptyMessage
	}

	key := strings.TrimSpace(s.apiKey())
	if key == "" {
		return ChatReply{}, ErrMissingAPIKey
	}

	content, err := s.completer.Complete(ctx, key, []ai.Message{
		{Role: "system", Content: chatSystemPrompt},
		{Role: "user", Content: message},
	})
	if err != nil {
		return ChatReply{}, err
	}

	return parseChatReply(content), nil
}

// parseChatReply accepts the structured JSON reply, optionally wrapped in a
// markdown fence. Anything else becomes a plain message with no tasks.
func parseChatReply(content string) ChatReply {
	body := stripCodeFence(strings.TrimSpace(content))

	var reply ChatReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil || !strings.HasPrefix(body, "{") {
		return ChatReply{Message: content, Tasks: []string{}}
	}

	if reply.Tasks == nil {
		reply.Tasks = []string{}
	}
	return reply
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
