package handlers

import (
	"net/http"
	"strconv"
	"time"

	"go-books-agent/internal/finance"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/dashboard ---
// One payload drives the whole dashboard. Admins get the full Overview
// with a daily profit chart; employees get the revenue-only slice and a
// revenue chart. Cost figures never leave the server for non-admins.
func (a *API) GetDashboard(c *gin.Context) {
	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	days := 7
	if d, err := strconv.Atoi(c.Query("days")); err == nil && d > 0 && d <= 90 {
		days = d
	}

	overview := finance.BuildOverview(snap)
	shippingReport, shippingTotal := finance.ShippingCostReport(snap)

	if !isAdmin(c) {
		c.JSON(http.StatusOK, gin.H{
			"overview":     overview.Restricted(),
			"daily_series": finance.DailySeries(snap, days, time.Now(), finance.ScopeEmployee),
			"gateways":     finance.GatewayDistribution(snap),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"overview":       overview,
		"daily_series":   finance.DailySeries(snap, days, time.Now(), finance.ScopeAdmin),
		"gateways":       finance.GatewayDistribution(snap),
		"shipping":       shippingReport,
		"shipping_total": shippingTotal,
	})
}

// --- GET: /api/gateways/options ---
// The static gateway and shipping tables, for the order form dropdowns.
func (a *API) GetFinanceOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"gateways":       finance.PaymentGateways,
		"gateway_groups": finance.DisplayGateways(),
		"shipping":       finance.ShippingOptions,
	})
}
