package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers 聚合所有 HTTP 处理器, 统一注册路由。
type Handlers struct {
	Upload   *UploadHandler
	Chat     *ChatHandler
	Document *DocumentHandler
	Session  *SessionHandler
	System   *SystemHandler
	Auth     *AuthHandler
}

// RegisterRoutes 把全部 API 路由挂载到引擎上。authGuard 不为 nil 时,
// 除健康检查和令牌签发外的接口都要求携带访问令牌。
func RegisterRoutes(r *gin.Engine, h *Handlers, authGuard gin.HandlerFunc) {
	api := r.Group("/api")

	// 开放接口: 健康检查与令牌签发
	api.GET("/health", h.System.Health)
	if h.Auth != nil {
		api.POST("/auth/token", h.Auth.Token)
	}

	protected := api.Group("")
	if authGuard != nil {
		protected.Use(authGuard)
	}
	{
		protected.POST("/upload", h.Upload.Upload)

		protected.POST("/chat", h.Chat.Chat)
		protected.GET("/chat/stream", h.Chat.Stream)

		protected.GET("/documents", h.Document.List)
		protected.DELETE("/documents", h.Document.ClearAll)
		protected.DELETE("/documents/:file_id", h.Document.Delete)
		protected.GET("/documents/:file_id/summary", h.Document.Summary)

		protected.GET("/sessions/:session_id/history", h.Session.History)
		protected.DELETE("/sessions/:session_id/history", h.Session.Clear)

		protected.GET("/test", h.System.Test)
		protected.GET("/stats", h.System.Stats)
	}
}
