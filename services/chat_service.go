package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sunbridger/lixiaona/llm"
	"github.com/Sunbridger/lixiaona/logger"
	"github.com/Sunbridger/lixiaona/models"
)

const (
	chatTemperature = 0.7

	// Single fixed line when the model is unreachable; the coach never
	// shows an error state.
	chatFallbackReply = "Momo 稍微有点累了（连接超时），请稍后再试哦~ 🐰💤"

	chatPersonaPrompt = "你叫“Momo酱”，是用户%s的私人减肥小助手。你的性格非常可爱、元气满满、像贴心的闺蜜。" +
		"你的任务是鼓励用户坚持减肥、回答关于热量和饮食的问题、提供情绪价值。" +
		"请用中文回答，多使用可爱的emoji（如🐰、✨、💪）。回复要简短精炼，不要长篇大论。"
)

// ChatService drives the Momo coach persona.
type ChatService struct {
	chat Chatter
}

func NewChatService(chat Chatter) *ChatService {
	return &ChatService{chat: chat}
}

// NewChatServiceFromEnv builds the service with the configured LLM client.
func NewChatServiceFromEnv() *ChatService {
	return NewChatService(llm.NewClient())
}

// Reply runs one coach turn over the given history. Failures collapse to a
// fixed apologetic line instead of an error.
func (s *ChatService) Reply(ctx context.Context, profile models.Profile, history []llm.Message) string {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: fmt.Sprintf(chatPersonaPrompt, profile.Name),
	})
	messages = append(messages, history...)

	content, err := s.chat.Chat(ctx, messages, chatTemperature)
	if err != nil || strings.TrimSpace(content) == "" {
		logger.Warn("Coach chat unavailable", "error", err)
		return chatFallbackReply
	}
	return content
}

// Summarize produces a one-line summary of a transcript for the saved
// conversations list. Unlike Reply this returns the error: the caller has
// its own default summary.
func (s *ChatService) Summarize(ctx context.Context, history []llm.Message) (string, error) {
	var sb strings.Builder
	for _, m := range history {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}

	content, err := s.chat.Chat(ctx, []llm.Message{
		{Role: "system", Content: "请用一句话（15字以内）概括下面这段对话的主题，只返回概括本身。"},
		{Role: "user", Content: sb.String()},
	}, chatTemperature)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("empty summary reply")
	}
	return strings.TrimSpace(content), nil
}
