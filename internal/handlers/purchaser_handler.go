package handlers

import (
	"net/http"
	"strconv"

	"go-books-agent/internal/finance"
	"go-books-agent/internal/ledger"

	"github.com/gin-gonic/gin"
)

// --- GET: Purchasers with lifetime custody traffic next to the balance ---
func (a *API) GetPurchasers(c *gin.Context) {
	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch purchasers"})
		return
	}
	c.JSON(http.StatusOK, finance.PurchaserDetails(snap))
}

// --- POST: Add a purchaser (starts with a zero float) ---
func (a *API) CreatePurchaser(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	purchaser, err := a.Engine.CreatePurchaser(req.Name, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchaser)
}

// --- POST: Top up a purchaser's custody float from the treasury ---
func (a *API) AddCustodyFunds(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchaser ID"})
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
		Notes  string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	expense, err := a.Engine.AddCustodyFunds(uint(id), req.Amount, req.Notes, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// --- POST: Record an expense paid out of a purchaser's float ---
func (a *API) AddCustodyExpense(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchaser ID"})
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, use YYYY-MM-DD"})
		return
	}

	expense, err := a.Engine.AddCustodyExpense(ledger.CustodyExpenseInput{
		Date:        date,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		PurchaserID: uint(id),
	}, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}
