package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docqa-go/internal/model"
	"docqa-go/internal/service"
	"docqa-go/pkg/log"
)

const apiVersion = "1.0.0"

// SystemHandler 负责健康检查、连通性测试与运行统计接口。
type SystemHandler struct {
	docService service.DocumentService
	aiEnabled  bool
}

// NewSystemHandler 创建一个新的 SystemHandler 实例。
func NewSystemHandler(docService service.DocumentService, aiEnabled bool) *SystemHandler {
	return &SystemHandler{docService: docService, aiEnabled: aiEnabled}
}

// Health 处理健康检查请求。
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   apiVersion,
		AIEnabled: h.aiEnabled,
	})
}

// Test 处理前端连通性测试请求。
func (h *SystemHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":    "API connection successful!",
		"timestamp":  time.Now(),
		"ai_enabled": h.aiEnabled,
	})
}

// Stats 处理运行统计请求。
func (h *SystemHandler) Stats(c *gin.Context) {
	stats, err := h.docService.Stats(c.Request.Context())
	if err != nil {
		log.Error("Stats: failed to collect stats", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
