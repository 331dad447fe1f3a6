package finance

import (
	"testing"
	"time"

	"go-books-agent/internal/database"
	"go-books-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(v uint) *uint { return &v }

// testSnapshot: one completed order, one cancelled order with a
// cancellation fee, a treasury expense, a custody transfer and a payment.
func testSnapshot() database.Snapshot {
	return database.Snapshot{
		Orders: []models.Order{
			{
				ID: 1, Date: day("2026-08-10"), OrderNumber: "1001",
				OrderTotal: 1000, GatewayFee: 10, DeliveryFee: 15,
				PaymentMethod: "مدى", ShippingCompany: "SMSA",
				Status: models.StatusCompleted,
				Products: []models.OrderProduct{
					{ID: 1, OrderID: 1, Name: "عطر العود", Cost: 250, SupplierID: 1},
					{ID: 2, OrderID: 1, Name: "مسك", Cost: 150, SupplierID: 2},
				},
			},
			{
				ID: 2, Date: day("2026-08-11"), OrderNumber: "1002",
				OrderTotal: 500, GatewayFee: 5, DeliveryFee: 14.95,
				PaymentMethod: "تمارا", ShippingCompany: "RedBox",
				Status: models.StatusCancelled, CancellationFee: 50,
				Products: []models.OrderProduct{
					{ID: 3, OrderID: 2, Name: "عطر وردي", Cost: 200, SupplierID: 1},
				},
			},
		},
		Suppliers: []models.Supplier{
			{ID: 1, Name: "مؤسسة العطور"},
			{ID: 2, Name: "بيت المسك"},
		},
		Purchasers: []models.Purchaser{{ID: 1, Name: "سعد", Balance: 400}},
		Payments: []models.Payment{
			{ID: 1, Date: day("2026-08-12"), SupplierID: 1, Amount: 150, SourceType: models.SourceTreasury},
		},
		Expenses: []models.Expense{
			{ID: 1, Date: day("2026-08-10"), Description: "إعلان", Amount: 100, Category: "إعلانية", Kind: models.ExpenseKindNormal},
			{ID: 2, Date: day("2026-08-11"), Description: "تحويل عهدة إلى سعد", Amount: 500,
				Category: models.CategoryCustodyTransfer, Kind: models.ExpenseKindCustodyTransfer, PurchaserID: ptr(1)},
			{ID: 3, Date: day("2026-08-12"), Description: "شراء أكياس", Amount: 100, Category: "أخرى",
				Kind: models.ExpenseKindNormal, PurchaserID: ptr(1)},
		},
	}
}

func TestBuildOverview(t *testing.T) {
	ov := BuildOverview(testSnapshot())

	assert.Equal(t, 1000.0, ov.TotalSales, "completed orders only")
	assert.Equal(t, 1050.0, ov.TotalRevenue, "sales plus cancellation fees")
	assert.Equal(t, 400.0, ov.TotalCOGS, "cancelled goods went back to stock")
	assert.Equal(t, 15.0, ov.TotalGatewayFees, "fees stick on every order")
	assert.InDelta(t, 29.95, ov.TotalDeliveryFees, 1e-9)
	assert.Equal(t, 200.0, ov.TotalExpenses, "custody transfers are not expenses")

	assert.InDelta(t, 1050-400-15-29.95, ov.GrossProfit, 1e-9)
	assert.InDelta(t, ov.GrossProfit-200, ov.NetProfit, 1e-9)
	assert.Equal(t, 250.0, ov.AccountsPayable, "COGS minus payments")
	assert.Equal(t, 1000.0, ov.AverageOrderValue)
	assert.Equal(t, 1, ov.CompletedOrders)
}

func TestOverviewRestricted(t *testing.T) {
	ov := BuildOverview(testSnapshot())
	r := ov.Restricted()

	assert.Equal(t, ov.TotalSales, r.TotalSales)
	assert.Equal(t, ov.TotalRevenue, r.TotalRevenue)
	assert.Equal(t, ov.AverageOrderValue, r.AverageOrderValue)
	assert.Equal(t, ov.CompletedOrders, r.CompletedOrders)
}

func TestBuildOverviewEmpty(t *testing.T) {
	ov := BuildOverview(database.Snapshot{})
	assert.Zero(t, ov.TotalRevenue)
	assert.Zero(t, ov.AverageOrderValue, "no divide by zero on an empty ledger")
}

func TestSupplierBalances(t *testing.T) {
	balances := SupplierBalances(testSnapshot())
	require.Len(t, balances, 2)

	byID := map[uint]float64{}
	for _, b := range balances {
		byID[b.ID] = b.Balance
	}
	assert.Equal(t, 100.0, byID[1], "250 owed minus 150 paid; cancelled line excluded")
	assert.Equal(t, 150.0, byID[2])
}

func TestPurchaserDetails(t *testing.T) {
	details := PurchaserDetails(testSnapshot())
	require.Len(t, details, 1)

	assert.Equal(t, 500.0, details[0].TotalReceived)
	assert.Equal(t, 100.0, details[0].TotalSpent)
	assert.Equal(t, 400.0, details[0].Balance)
}

func TestGatewayDistribution(t *testing.T) {
	shares := GatewayDistribution(testSnapshot())
	require.Len(t, shares, 1, "cancelled orders do not count")

	assert.Equal(t, "مدى", shares[0].Name)
	assert.Equal(t, 1000.0, shares[0].Value)
	assert.Equal(t, 100.0, shares[0].Percentage)
}

func TestGatewayDistributionEmpty(t *testing.T) {
	assert.Empty(t, GatewayDistribution(database.Snapshot{}))
}

func TestDailySeriesScopes(t *testing.T) {
	snap := testSnapshot()
	now := day("2026-08-12")

	admin := DailySeries(snap, 7, now, ScopeAdmin)
	employee := DailySeries(snap, 7, now, ScopeEmployee)
	require.Len(t, admin, 7)
	require.Len(t, employee, 7)

	byDate := func(series []SeriesPoint, date string) float64 {
		for _, p := range series {
			if p.Date == date {
				return p.Value
			}
		}
		t.Fatalf("date %s missing from series", date)
		return 0
	}

	// 2026-08-10: revenue 1000; profit 1000 - 400 - 10 - 15 - 100 expense
	assert.Equal(t, 1000.0, byDate(employee, "2026-08-10"))
	assert.InDelta(t, 475.0, byDate(admin, "2026-08-10"), 1e-9)

	// 2026-08-11: cancelled order contributes its fee; custody transfer is skipped
	assert.Equal(t, 50.0, byDate(employee, "2026-08-11"))
	assert.InDelta(t, 50-5-14.95, byDate(admin, "2026-08-11"), 1e-9)
}

func TestShippingCostReport(t *testing.T) {
	report, total := ShippingCostReport(testSnapshot())
	require.Len(t, report, 2)

	assert.InDelta(t, 29.95, total, 1e-9)
	// Sorted by spend, descending.
	assert.Equal(t, "سمسا", report[0].Name)
	assert.Equal(t, 15.0, report[0].Total)
	assert.Equal(t, "رد بوكس", report[1].Name)
	assert.InDelta(t, 14.95, report[1].Total, 1e-9)
}

func TestGatewayReports(t *testing.T) {
	snap := testSnapshot()
	snap.Settlements = []models.Settlement{
		{ID: 1, GatewayID: "مدى", Amount: 600, Date: day("2026-08-13")},
	}

	reports := GatewayReports(snap)
	var mada *GatewayReport
	for i := range reports {
		if reports[i].Name == "مدى" {
			mada = &reports[i]
		}
	}
	require.NotNil(t, mada)

	assert.Equal(t, 1000.0, mada.Revenue)
	assert.Equal(t, 10.0, mada.Fees)
	assert.Equal(t, 600.0, mada.Settled)
	assert.Equal(t, 390.0, mada.Outstanding)
	assert.Equal(t, 1, mada.OrderCount)
}
