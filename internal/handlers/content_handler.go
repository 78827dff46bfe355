package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/services"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// ContentHandler exposes outreach copy generation.
type ContentHandler struct {
	content *services.ContentService
	logger  utils.Logger
}

func NewContentHandler(content *services.ContentService, logger utils.Logger) *ContentHandler {
	return &ContentHandler{content: content, logger: logger}
}

type generateContentRequest struct {
	Kind       string `json:"kind" binding:"required"`
	ClientName string `json:"client_name" binding:"required"`
	Context    string `json:"context"`
}

func (h *ContentHandler) Generate(c *gin.Context) {
	var req generateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	text, err := h.content.GenerateContent(c.Request.Context(), req.Kind, req.ClientName, req.Context)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "content": text})
}

func (h *ContentHandler) Kinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "kinds": services.ContentKinds()})
}
