package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa-go/internal/repository"
	"docqa-go/internal/service"
	"docqa-go/pkg/log"
)

// DocumentHandler 负责处理所有与文档管理相关的 API 请求。
type DocumentHandler struct {
	docService service.DocumentService
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(docService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

// List 处理获取文档列表的请求。
func (h *DocumentHandler) List(c *gin.Context) {
	items, err := h.docService.List(c.Request.Context())
	if err != nil {
		log.Error("List: failed to list documents", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": items})
}

// Delete 处理删除单个文档的请求。
func (h *DocumentHandler) Delete(c *gin.Context) {
	fileID := c.Param("file_id")

	filename, err := h.docService.Delete(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		log.Error("Delete: failed to delete document", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Document '%s' deleted successfully", filename)})
}

// ClearAll 处理清空全部文档的请求。
func (h *DocumentHandler) ClearAll(c *gin.Context) {
	if err := h.docService.ClearAll(c.Request.Context()); err != nil {
		log.Error("ClearAll: failed to clear documents", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All documents cleared"})
}

// Summary 处理获取文档摘要的请求。
func (h *DocumentHandler) Summary(c *gin.Context) {
	fileID := c.Param("file_id")

	summary, err := h.docService.Summary(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		log.Error("Summary: failed to summarize document", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
