package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- GET: App settings (bank account + expense categories) ---
func (a *API) GetSettings(c *gin.Context) {
	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bank_account_number": snap.Settings.BankAccountNumber,
		"expense_categories":  snap.ExpenseCategories(),
	})
}

type SettingsRequest struct {
	BankAccountNumber string   `json:"bank_account_number"`
	ExpenseCategories []string `json:"expense_categories"`
}

// --- PUT: Update settings (admin only, enforced at the route level) ---
func (a *API) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := a.Engine.UpdateSettings(req.BankAccountNumber, req.ExpenseCategories, actor(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully"})
}

// --- GET: Audit log, newest first (admin only) ---
func (a *API) GetLogs(c *gin.Context) {
	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}
	c.JSON(http.StatusOK, snap.Logs)
}
