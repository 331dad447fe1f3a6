package handlers

import (
	"net/http"

	"go-books-agent/internal/ledger"

	"github.com/gin-gonic/gin"
)

type ExpenseRequest struct {
	Date        string  `json:"date" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

// --- GET: List expenses, newest first ---
func (a *API) GetExpenses(c *gin.Context) {
	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
		return
	}
	c.JSON(http.StatusOK, snap.Expenses)
}

// --- POST: Record a treasury expense ---
// A new category name is added to the settings list automatically.
func (a *API) AddExpense(c *gin.Context) {
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

	expense, err := a.Engine.AddExpense(ledger.ExpenseInput{
		Date:        date,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
	}, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}
