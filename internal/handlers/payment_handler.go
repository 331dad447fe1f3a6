package handlers

import (
	"net/http"

	"go-books-agent/internal/ledger"

	"github.com/gin-gonic/gin"
)

type PaymentRequest struct {
	Date        string  `json:"date" binding:"required"`
	SupplierID  uint    `json:"supplier_id" binding:"required"`
	Amount      float64 `json:"amount"`
	SourceType  string  `json:"source_type" binding:"required"`
	PurchaserID *uint   `json:"purchaser_id"`
}

// --- GET: List supplier payments ---
func (a *API) GetPayments(c *gin.Context) {
	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}
	c.JSON(http.StatusOK, snap.Payments)
}

// --- POST: Pay a supplier from the treasury or from a custody float ---
func (a *API) AddPayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, use YYYY-MM-DD"})
		return
	}

	payment, err := a.Engine.AddPayment(ledger.PaymentInput{
		Date:        date,
		SupplierID:  req.SupplierID,
		Amount:      req.Amount,
		SourceType:  req.SourceType,
		PurchaserID: req.PurchaserID,
	}, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}
