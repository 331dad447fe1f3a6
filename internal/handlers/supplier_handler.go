package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-books-agent/internal/export"
	"go-books-agent/internal/finance"
	"go-books-agent/internal/ledger"
	"go-books-agent/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET: Suppliers with their outstanding balances ---
func (a *API) GetSuppliers(c *gin.Context) {
	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suppliers"})
		return
	}
	c.JSON(http.StatusOK, finance.SupplierBalances(snap))
}

// --- POST: Add a new supplier ---
func (a *API) CreateSupplier(c *gin.Context) {
	var input ledger.SupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	supplier, err := a.Engine.CreateSupplier(input, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// --- GET: One supplier drilled down: balance, their order lines, payments ---
func (a *API) GetSupplierDetails(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
		return
	}
	supplierID := uint(id)

	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch supplier"})
		return
	}

	var supplier *models.Supplier
	for i := range snap.Suppliers {
		if snap.Suppliers[i].ID == supplierID {
			supplier = &snap.Suppliers[i]
			break
		}
	}
	if supplier == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
		return
	}

	type lineDetail struct {
		OrderNumber string    `json:"order_number"`
		Date        time.Time `json:"date"`
		Status      string    `json:"status"`
		ProductName string    `json:"product_name"`
		Cost        float64   `json:"cost"`
	}
	var lines []lineDetail
	var owed float64
	for _, o := range snap.Orders {
		for _, p := range o.Products {
			if p.SupplierID != supplierID {
				continue
			}
			lines = append(lines, lineDetail{
				OrderNumber: o.OrderNumber,
				Date:        o.Date,
				Status:      o.Status,
				ProductName: p.Name,
				Cost:        p.Cost,
			})
			if o.Status == models.StatusCompleted {
				owed += p.Cost
			}
		}
	}

	var payments []models.Payment
	var paid float64
	for _, p := range snap.Payments {
		if p.SupplierID == supplierID {
			payments = append(payments, p)
			paid += p.Amount
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"supplier": supplier,
		"balance":  owed - paid,
		"lines":    lines,
		"payments": payments,
	})
}

// --- GET: Supplier account statement over a period ---
// Query: start=YYYY-MM-DD, end=YYYY-MM-DD, format=json|csv|xlsx
func (a *API) GetSupplierStatement(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
		return
	}
	start, err1 := parseDate(c.Query("start"))
	end, err2 := parseDate(c.Query("end"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end are required (YYYY-MM-DD)"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not be before start"})
		return
	}

	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build statement"})
		return
	}
	st := finance.BuildStatement(snap, uint(id), start, end)
	if st.SupplierName == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, st)
	case "csv":
		data, err := export.StatementCSV(st)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render CSV"})
			return
		}
		name := fmt.Sprintf("statement_%d_%s.csv", st.SupplierID, end.Format("2006-01-02"))
		c.Header("Content-Disposition", "attachment; filename="+name)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
	case "xlsx":
		data, err := export.StatementXLSX(st)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render XLSX"})
			return
		}
		name := fmt.Sprintf("statement_%d_%s.xlsx", st.SupplierID, end.Format("2006-01-02"))
		c.Header("Content-Disposition", "attachment; filename="+name)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown format, use json, csv or xlsx"})
	}
}
