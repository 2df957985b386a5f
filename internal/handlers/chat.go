package handlers

import (
	"net/http"

	"weektodo/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var input struct {
		Message string `json:"message"`
	}
	if err := bindBody(c, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.chatService.Chat(c.Request.Context(), input.Message)
	if err != nil {
		handleChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
