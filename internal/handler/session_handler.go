package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa-go/internal/model"
	"docqa-go/internal/repository"
	"docqa-go/internal/service"
	"docqa-go/pkg/log"
)

// SessionHandler 负责处理会话历史相关的 API 请求。
type SessionHandler struct {
	chatService service.ChatService
}

// NewSessionHandler 创建一个新的 SessionHandler 实例。
func NewSessionHandler(chatService service.ChatService) *SessionHandler {
	return &SessionHandler{chatService: chatService}
}

// History 处理获取会话历史的请求。
func (h *SessionHandler) History(c *gin.Context) {
	sessionID := c.Param("session_id")

	history, err := h.chatService.History(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		log.Error("History: failed to load session history", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if history == nil {
		// 空历史渲染为 [] 而不是 null
		history = []model.HistoryEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"history":    history,
	})
}

// Clear 处理清空会话历史的请求。会话本身保留, 只移除问答记录。
func (h *SessionHandler) Clear(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.chatService.ClearHistory(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		log.Error("Clear: failed to clear session history", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation history cleared"})
}
