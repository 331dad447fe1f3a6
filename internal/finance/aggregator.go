package finance

import (
	"sort"
	"time"

	"go-books-agent/internal/database"
	"go-books-agent/internal/models"
)

// Scope controls which numbers a caller may see. Employees get raw
// revenue; cost and profit figures are admin-only.
type Scope int

const (
	ScopeAdmin Scope = iota
	ScopeEmployee
)

// Overview is the full financial summary derived from one snapshot.
// Everything here is recomputed on every call; nothing is cached or stored.
type Overview struct {
	TotalSales        float64 `json:"total_sales"` // completed orders only
	TotalRevenue      float64 `json:"total_revenue"`
	TotalCOGS         float64 `json:"total_cogs"`
	TotalGatewayFees  float64 `json:"total_gateway_fees"`
	TotalDeliveryFees float64 `json:"total_delivery_fees"`
	TotalExpenses     float64 `json:"total_expenses"`
	GrossProfit       float64 `json:"gross_profit"`
	NetProfit         float64 `json:"net_profit"`
	AccountsPayable   float64 `json:"accounts_payable"`
	AverageOrderValue float64 `json:"average_order_value"`
	CompletedOrders   int     `json:"completed_orders"`
}

// RevenueOverview is the employee-visible slice of Overview. It has no
// cost fields at all, so a restricted response can never leak them.
type RevenueOverview struct {
	TotalSales        float64 `json:"total_sales"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
	CompletedOrders   int     `json:"completed_orders"`
}

// Restricted strips the Overview down to what a non-admin may see.
func (o Overview) Restricted() RevenueOverview {
	return RevenueOverview{
		TotalSales:        o.TotalSales,
		TotalRevenue:      o.TotalRevenue,
		AverageOrderValue: o.AverageOrderValue,
		CompletedOrders:   o.CompletedOrders,
	}
}

func orderCost(o models.Order) float64 {
	var c float64
	for _, p := range o.Products {
		c += p.Cost
	}
	return c
}

// BuildOverview derives the dashboard totals.
//
// Revenue counts completed totals plus cancellation fees on the rest.
// COGS counts completed orders only (returned goods went back to stock),
// while gateway and delivery fees count every order - the processor and
// the courier keep their cut no matter how the order ended.
func BuildOverview(snap database.Snapshot) Overview {
	var ov Overview

	for _, o := range snap.Orders {
		ov.TotalGatewayFees += o.GatewayFee
		ov.TotalDeliveryFees += o.DeliveryFee
		if o.Status == models.StatusCompleted {
			ov.TotalSales += o.OrderTotal
			ov.TotalCOGS += orderCost(o)
			ov.CompletedOrders++
		} else {
			ov.TotalRevenue += o.CancellationFee
		}
	}
	ov.TotalRevenue += ov.TotalSales

	var totalPayments float64
	for _, p := range snap.Payments {
		totalPayments += p.Amount
	}

	for _, e := range snap.Expenses {
		if e.Kind != models.ExpenseKindCustodyTransfer {
			ov.TotalExpenses += e.Amount
		}
	}

	ov.GrossProfit = ov.TotalRevenue - ov.TotalCOGS - ov.TotalGatewayFees - ov.TotalDeliveryFees
	ov.NetProfit = ov.GrossProfit - ov.TotalExpenses
	ov.AccountsPayable = ov.TotalCOGS - totalPayments
	if ov.CompletedOrders > 0 {
		ov.AverageOrderValue = ov.TotalSales / float64(ov.CompletedOrders)
	}
	return ov
}

// SupplierBalance pairs a supplier with what the business still owes it:
// completed-order line costs minus payments. Positive means we owe them.
type SupplierBalance struct {
	models.Supplier
	Balance float64 `json:"balance"`
}

func SupplierBalances(snap database.Snapshot) []SupplierBalance {
	owed := make(map[uint]float64)
	for _, o := range snap.Orders {
		if o.Status != models.StatusCompleted {
			continue
		}
		for _, p := range o.Products {
			owed[p.SupplierID] += p.Cost
		}
	}
	paid := make(map[uint]float64)
	for _, p := range snap.Payments {
		paid[p.SupplierID] += p.Amount
	}

	balances := make([]SupplierBalance, 0, len(snap.Suppliers))
	for _, s := range snap.Suppliers {
		balances = append(balances, SupplierBalance{
			Supplier: s,
			Balance:  owed[s.ID] - paid[s.ID],
		})
	}
	return balances
}

// PurchaserDetail adds the lifetime custody traffic next to the
// materialized balance, so the two can be eyeballed against each other.
type PurchaserDetail struct {
	models.Purchaser
	TotalReceived float64 `json:"total_received"`
	TotalSpent    float64 `json:"total_spent"`
}

func PurchaserDetails(snap database.Snapshot) []PurchaserDetail {
	details := make([]PurchaserDetail, 0, len(snap.Purchasers))
	for _, p := range snap.Purchasers {
		d := PurchaserDetail{Purchaser: p}
		for _, e := range snap.Expenses {
			if e.PurchaserID == nil || *e.PurchaserID != p.ID {
				continue
			}
			if e.Kind == models.ExpenseKindCustodyTransfer {
				d.TotalReceived += e.Amount
			} else {
				d.TotalSpent += e.Amount
			}
		}
		for _, pay := range snap.Payments {
			if pay.SourceType == models.SourceCustody && pay.PurchaserID != nil && *pay.PurchaserID == p.ID {
				d.TotalSpent += pay.Amount
			}
		}
		details = append(details, d)
	}
	return details
}

// SeriesPoint is one day in the dashboard chart.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// DailySeries returns the last `days` days ending at now (inclusive).
// Admins see daily net profit, everyone else daily revenue. Same-day
// expenses (custody transfers excluded) pull the profit line down.
func DailySeries(snap database.Snapshot, days int, now time.Time, scope Scope) []SeriesPoint {
	type bucket struct{ profit, revenue float64 }
	buckets := make(map[string]*bucket, days)
	keys := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := now.AddDate(0, 0, -i).Format("2006-01-02")
		buckets[key] = &bucket{}
		keys = append(keys, key)
	}

	for _, o := range snap.Orders {
		b, ok := buckets[o.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		var revenue float64
		if o.Status == models.StatusCompleted {
			revenue = o.OrderTotal
			b.profit += revenue - orderCost(o) - o.GatewayFee - o.DeliveryFee
		} else {
			revenue = o.CancellationFee
			b.profit += revenue - o.GatewayFee - o.DeliveryFee
		}
		b.revenue += revenue
	}

	for _, e := range snap.Expenses {
		if e.Kind == models.ExpenseKindCustodyTransfer {
			continue
		}
		if b, ok := buckets[e.Date.Format("2006-01-02")]; ok {
			b.profit -= e.Amount
		}
	}

	series := make([]SeriesPoint, 0, days)
	for _, key := range keys {
		v := buckets[key].profit
		if scope != ScopeAdmin {
			v = buckets[key].revenue
		}
		series = append(series, SeriesPoint{Date: key, Value: v})
	}
	return series
}

// GatewayShare is one slice of the sales-by-gateway distribution.
type GatewayShare struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// GatewayDistribution groups completed-order revenue by payment method.
// Percentages are 0 when there is nothing to divide by.
func GatewayDistribution(snap database.Snapshot) []GatewayShare {
	values := make(map[string]float64)
	var total float64
	for _, o := range snap.Orders {
		if o.Status != models.StatusCompleted {
			continue
		}
		values[o.PaymentMethod] += o.OrderTotal
		total += o.OrderTotal
	}

	shares := make([]GatewayShare, 0, len(values))
	for name, value := range values {
		pct := 0.0
		if total > 0 {
			pct = value / total * 100
		}
		shares = append(shares, GatewayShare{Name: name, Value: value, Percentage: pct})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Value != shares[j].Value {
			return shares[i].Value > shares[j].Value
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}

// ShippingCost is the delivery spend for one carrier across ALL orders -
// shipping is sunk cost whether or not the order survived.
type ShippingCost struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

func ShippingCostReport(snap database.Snapshot) ([]ShippingCost, float64) {
	byCompany := make(map[string]float64)
	var total float64
	for _, o := range snap.Orders {
		name := ShippingNameByID(o.ShippingCompany)
		byCompany[name] += o.DeliveryFee
		total += o.DeliveryFee
	}

	report := make([]ShippingCost, 0, len(byCompany))
	for name, t := range byCompany {
		report = append(report, ShippingCost{Name: name, Total: t})
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].Total != report[j].Total {
			return report[i].Total > report[j].Total
		}
		return report[i].Name < report[j].Name
	})
	return report, total
}
