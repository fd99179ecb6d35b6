package handlers

import (
	"errors"
	"log"
	"net/http"

	"legalai-backend/models"
	"legalai-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for precedent-grounded chat.
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// ChatRequest represents the request body for a chat turn
type ChatRequest struct {
	Message string               `json:"message"`
	History []models.ChatMessage `json:"history"`
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPTY_MESSAGE",
				"message": "Message cannot be empty.",
			},
		})
		return
	}

	answer, err := h.chatService.Chat(c.Request.Context(), req.Message, req.History)
	if err != nil {
		var configErr *service.ConfigError
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ROLE",
					"message": err.Error(),
				},
			})
		case errors.As(err, &configErr):
			log.Printf("chat unavailable: %v", configErr)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CHAT_NOT_CONFIGURED",
					"message": configErr.Error(),
				},
			})
		default:
			log.Printf("chat failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CHAT_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, answer)
}
