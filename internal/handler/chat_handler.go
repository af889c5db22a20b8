package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"docqa-go/internal/model"
	"docqa-go/internal/service"
	"docqa-go/pkg/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 负责处理问答请求, 包括 HTTP 与 WebSocket 两种形式。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat 处理一次完整的问答请求。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
		return
	}

	resp, err := h.chatService.Chat(c.Request.Context(), req.Message, req.SessionID)
	if err != nil {
		log.Error("Chat: failed to generate response", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Stream 在 WebSocket 连接上处理问答, 生成内容按分块增量下发。
// 客户端每发送一条 {"message","session_id"}, 服务端回复若干
// {"chunk"} 帧, 最后以 {"done":true} 帧收尾。
func (h *ChatHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Stream: WebSocket 升级失败", err)
		return
	}
	defer conn.Close()
	log.Info("[Chat] WebSocket 连接已建立")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			// 客户端正常断开也会走到这里
			log.Infof("[Chat] WebSocket 连接关闭: %v", err)
			return
		}

		var req model.ChatRequest
		if err := json.Unmarshal(message, &req); err != nil {
			_ = writeFrame(conn, gin.H{"error": "Invalid request payload"})
			continue
		}
		if strings.TrimSpace(req.Message) == "" {
			_ = writeFrame(conn, gin.H{"error": "Message cannot be empty"})
			continue
		}

		resp, err := h.chatService.ChatStream(c.Request.Context(), req.Message, req.SessionID, func(chunk string) error {
			return writeFrame(conn, gin.H{"chunk": chunk})
		})
		if err != nil {
			log.Errorf("[Chat] 流式问答失败: %v", err)
			_ = writeFrame(conn, gin.H{"error": "Internal server error"})
			continue
		}

		if err := writeFrame(conn, gin.H{
			"done":       true,
			"session_id": resp.SessionID,
			"sources":    resp.Sources,
		}); err != nil {
			return
		}
	}
}

// writeFrame 把载荷编码为 JSON 文本帧下发。
func writeFrame(conn *websocket.Conn, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, b)
}
