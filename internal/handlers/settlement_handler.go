package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go-books-agent/internal/finance"
	"go-books-agent/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// --- GET: Settlement position of every gateway group ---
// Revenue, fees, settled so far and what the processor still owes.
func (a *API) GetGatewayReports(c *gin.Context) {
	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gateway reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"gateways":    finance.GatewayReports(snap),
		"settlements": snap.Settlements,
	})
}

type SettlementRequest struct {
	GatewayID  string  `json:"gateway_id" binding:"required"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date" binding:"required"`
	Attachment string  `json:"attachment"`
	Notes      string  `json:"notes"`
}

// --- POST: Record net funds received from a gateway ---
func (a *API) AddSettlement(c *gin.Context) {
	var req SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, use YYYY-MM-DD"})
		return
	}

	settlement, err := a.Engine.AddSettlement(ledger.SettlementInput{
		GatewayID:  req.GatewayID,
		Amount:     req.Amount,
		Date:       date,
		Attachment: req.Attachment,
		Notes:      req.Notes,
	}, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, settlement)
}

// --- UPLOAD: Settlement receipt files ---
func (a *API) UploadAttachment(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	// 2. Only bank receipts: images and PDFs
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".pdf":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PNG, JPG and PDF files are allowed"})
		return
	}

	// 3. Generate a safe unique filename
	filename := uuid.NewString() + ext
	filepath := "./uploads/" + filename

	// 4. Save the file to the 'uploads' folder
	if err := c.SaveUploadedFile(file, filepath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	// Get the Base URL from .env (e.g., http://localhost:8080)
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	fullURL := baseURL + "/uploads/" + filename
	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"url":     fullURL,
	})
}
