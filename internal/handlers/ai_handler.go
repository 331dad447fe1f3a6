package handlers

import (
	"net/http"
	"os"

	"go-books-agent/internal/ai"

	"github.com/gin-gonic/gin"
)

type ParseInvoiceRequest struct {
	Text string `json:"text" binding:"required"`
}

// --- POST: /api/ai/parse-invoice ---
// Turns pasted invoice text into a prefilled order draft. Nothing is
// written to the ledger; the user reviews the draft and submits it
// through the normal order endpoint.
func (a *API) ParseInvoice(c *gin.Context) {
	var req ParseInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invoice text is required"})
		return
	}

	// 1. Get API Key from Environment Variable (Security Best Practice)
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server missing Gemini API Key"})
		return
	}

	// 2. Snapshot gives the parser the catalog to match lines against
	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load catalog"})
		return
	}

	// 3. Parse and reconcile
	draft, err := ai.ParseInvoice(c.Request.Context(), apiKey, req.Text, snap)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, draft)
}
