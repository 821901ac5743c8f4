package handlers

import (
	"log"
	"net/http"

	"dispatch-ledger/internal/ai"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

type AIHandler struct {
	Assistant *ai.Assistant
}

// --- POST: /api/ask (admin) ---
func (h *AIHandler) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	response, err := h.Assistant.Ask(c.Request.Context(), req.Message)
	if err != nil {
		log.Println("❌ Assistant failed:", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "The assistant is unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": response})
}
