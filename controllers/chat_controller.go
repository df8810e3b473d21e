package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/Sunbridger/lixiaona/database"
	"github.com/Sunbridger/lixiaona/llm"
	"github.com/Sunbridger/lixiaona/logger"
	"github.com/Sunbridger/lixiaona/models"
	"github.com/Sunbridger/lixiaona/services"
)

type ChatRequest struct {
	Messages []llm.Message `json:"messages"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type SaveConversationRequest struct {
	Messages []llm.Message `json:"messages"`
}

type ConversationResponse struct {
	ID        string `json:"id"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

// Chat runs one coach turn. The reply is always 200: when the model is
// down the persona's fixed apology line comes back instead.
func Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "No messages provided")
		return
	}

	var profile models.Profile
	if err := database.DB.First(&profile).Error; err != nil {
		logger.Error("Failed to fetch profile for chat", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to chat")
		return
	}

	svc := services.NewChatServiceFromEnv()
	reply := svc.Reply(r.Context(), profile, req.Messages)

	respondJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// SaveConversation stores a chat transcript with an auto-generated summary.
func SaveConversation(w http.ResponseWriter, r *http.Request) {
	var req SaveConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "No messages to save")
		return
	}

	svc := services.NewChatServiceFromEnv()
	summary, err := svc.Summarize(r.Context(), req.Messages)
	if err != nil {
		logger.Warn("Failed to summarize conversation", "error", err)
		summary = "和Momo的聊天记录"
	}

	messagesJSON, err := json.Marshal(req.Messages)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to serialize messages")
		return
	}

	conversation := models.Conversation{
		ID:       uuid.NewString(),
		Summary:  summary,
		Messages: string(messagesJSON),
	}

	if err := database.DB.Create(&conversation).Error; err != nil {
		logger.Error("Failed to save conversation", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save conversation")
		return
	}

	respondJSON(w, http.StatusOK, ConversationResponse{
		ID:        conversation.ID,
		Summary:   conversation.Summary,
		CreatedAt: conversation.CreatedAt.Format("2006-01-02 15:04:05"),
	})
}

// GetConversations lists saved conversation summaries, newest first.
func GetConversations(w http.ResponseWriter, r *http.Request) {
	var conversations []models.Conversation
	if err := database.DB.Order("created_at desc").Find(&conversations).Error; err != nil {
		logger.Error("Failed to fetch conversations", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch conversations")
		return
	}

	resp := make([]ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		resp = append(resp, ConversationResponse{
			ID:        c.ID,
			Summary:   c.Summary,
			CreatedAt: c.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	respondJSON(w, http.StatusOK, resp)
}
