package handlers

import (
	"net/http"
	"strconv"

	"go-books-agent/internal/ledger"

	"github.com/gin-gonic/gin"
)

// --- GET: List the master product catalog ---
// The order form uses this to prefill line cost and supplier.
func (a *API) GetMasterProducts(c *gin.Context) {
	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, snap.MasterProducts)
}

// --- POST: Add a catalog product ---
func (a *API) CreateMasterProduct(c *gin.Context) {
	var input ledger.MasterProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	product, err := a.Engine.CreateMasterProduct(input, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// --- PUT: Update a catalog product ---
func (a *API) UpdateMasterProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var input ledger.MasterProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	product, err := a.Engine.UpdateMasterProduct(uint(id), input, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// --- DELETE: Remove a catalog product ---
// Order lines keep their own cost snapshot, so history is unaffected.
func (a *API) DeleteMasterProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := a.Engine.DeleteMasterProduct(uint(id), actor(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
