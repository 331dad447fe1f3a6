package ledger

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go-books-agent/internal/database"
	"go-books-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testEngine(t *testing.T) (*Engine, *database.Store) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store := database.NewStore(db)
	require.NoError(t, store.AutoMigrate())
	return NewEngine(store), store
}

func testSupplier(t *testing.T, e *Engine) *models.Supplier {
	t.Helper()
	s, err := e.CreateSupplier(SupplierInput{
		Name:    "مؤسسة العطور",
		Contact: "0512345678",
		City:    "الرياض",
	}, "tester")
	require.NoError(t, err)
	return s
}

func sampleOrder(num string, supplierID uint) OrderInput {
	return OrderInput{
		Date:            time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		OrderNumber:     num,
		CustomerName:    "عميل",
		OrderTotal:      350,
		ShippingCompany: "RedBox",
		PaymentMethod:   "مدى",
		Products: []OrderLineInput{
			{Name: "عطر العود", Cost: 120, SupplierID: supplierID},
		},
	}
}

func custodyBalance(t *testing.T, store *database.Store, id uint) float64 {
	t.Helper()
	var p models.Purchaser
	require.NoError(t, store.DB.First(&p, id).Error)
	return p.Balance
}

func TestCreateSupplierValidation(t *testing.T) {
	e, _ := testEngine(t)

	_, err := e.CreateSupplier(SupplierInput{Name: "مورد", Contact: "123", City: "جدة"}, "tester")
	assert.True(t, IsValidation(err), "bad mobile must be rejected")

	_, err = e.CreateSupplier(SupplierInput{Name: "", Contact: "0512345678", City: "جدة"}, "tester")
	assert.True(t, IsValidation(err))

	_, err = e.CreateSupplier(SupplierInput{Name: "مورد", Contact: "0512345678", City: "جدة", Email: "not-an-email"}, "tester")
	assert.True(t, IsValidation(err))
}

func TestCreateSupplierDuplicateName(t *testing.T) {
	e, _ := testEngine(t)

	_, err := e.CreateSupplier(SupplierInput{Name: "Roses Trading", Contact: "0512345678", City: "جدة"}, "tester")
	require.NoError(t, err)

	_, err = e.CreateSupplier(SupplierInput{Name: "roses trading", Contact: "0587654321", City: "جدة"}, "tester")
	assert.ErrorIs(t, err, ErrDuplicate, "name uniqueness is case-insensitive")
}

func TestCreateOrderComputesFees(t *testing.T) {
	e, _ := testEngine(t)
	s := testSupplier(t, e)

	order, err := e.CreateOrder(sampleOrder("1001", s.ID), "tester")
	require.NoError(t, err)

	assert.Equal(t, 5.18, order.GatewayFee, "(350*0.01+1)*1.15 rounded")
	assert.Equal(t, 14.95, order.DeliveryFee, "RedBox fixed rate")
	assert.Equal(t, models.StatusCompleted, order.Status, "default status")
	assert.False(t, order.CreatedAt.IsZero())
	require.Len(t, order.Products, 1)
	assert.NotZero(t, order.Products[0].ID, "lines persisted with the header")
}

func TestCreateOrderKeepsExplicitGatewayFee(t *testing.T) {
	e, _ := testEngine(t)
	s := testSupplier(t, e)

	in := sampleOrder("1001", s.ID)
	fee := 9.99
	in.GatewayFee = &fee

	order, err := e.CreateOrder(in, "tester")
	require.NoError(t, err)
	assert.Equal(t, 9.99, order.GatewayFee, "explicit override wins over the rule")
}

func TestCreateOrderDuplicateNumber(t *testing.T) {
	e, _ := testEngine(t)
	s := testSupplier(t, e)

	_, err := e.CreateOrder(sampleOrder("1001", s.ID), "tester")
	require.NoError(t, err)

	_, err = e.CreateOrder(sampleOrder("1001", s.ID), "tester")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateOrderVariableCarrierNeedsFee(t *testing.T) {
	e, _ := testEngine(t)
	s := testSupplier(t, e)

	in := sampleOrder("1001", s.ID)
	in.ShippingCompany = "أخرى"
	_, err := e.CreateOrder(in, "tester")
	assert.True(t, IsValidation(err), "catch-all carrier has no rate to fall back on")

	fee := 33.0
	in.DeliveryFee = &fee
	order, err := e.CreateOrder(in, "tester")
	require.NoError(t, err)
	assert.Equal(t, 33.0, order.DeliveryFee)
}

func TestUpdateOrderGoodwillLog(t *testing.T) {
	e, store := testEngine(t)
	s := testSupplier(t, e)

	order, err := e.CreateOrder(sampleOrder("1001", s.ID), "tester")
	require.NoError(t, err)

	in := sampleOrder("1001", s.ID)
	in.Status = models.StatusCancelled
	in.CancellationFee = 0
	_, err = e.UpdateOrder(order.ID, in, "tester")
	require.NoError(t, err)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	require.NotEmpty(t, snap.Logs)
	assert.Contains(t, snap.Logs[0].Action, "تسوية ودية")
	assert.Contains(t, snap.Logs[0].Action, "#1001")
}

func TestUpdateOrderNotFound(t *testing.T) {
	e, _ := testEngine(t)
	s := testSupplier(t, e)

	_, err := e.UpdateOrder(999, sampleOrder("1001", s.ID), "tester")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustodyLifecycle(t *testing.T) {
	e, store := testEngine(t)
	s := testSupplier(t, e)

	p, err := e.CreatePurchaser("سعد", "tester")
	require.NoError(t, err)
	assert.Zero(t, p.Balance)

	// Top up 1000.
	transfer, err := e.AddCustodyFunds(p.ID, 1000, "دفعة أولى", "tester")
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseKindCustodyTransfer, transfer.Kind)
	assert.Equal(t, models.CategoryCustodyTransfer, transfer.Category)
	assert.Equal(t, 1000.0, custodyBalance(t, store, p.ID))

	// Spend 300 on an expense.
	exp, err := e.AddCustodyExpense(CustodyExpenseInput{
		Date:        time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC),
		Description: "شراء أكياس",
		Amount:      300,
		Category:    "أخرى",
		PurchaserID: p.ID,
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseKindNormal, exp.Kind)
	assert.Equal(t, 700.0, custodyBalance(t, store, p.ID))

	// Pay a supplier 200 from custody.
	pid := p.ID
	pay, err := e.AddPayment(PaymentInput{
		Date:        time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
		SupplierID:  s.ID,
		Amount:      200,
		SourceType:  models.SourceCustody,
		PurchaserID: &pid,
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.SourceCustody, pay.SourceType)
	assert.Equal(t, 500.0, custodyBalance(t, store, p.ID))
}

func TestCustodyPaymentInsufficientBalance(t *testing.T) {
	e, store := testEngine(t)
	s := testSupplier(t, e)

	p, err := e.CreatePurchaser("سعد", "tester")
	require.NoError(t, err)
	_, err = e.AddCustodyFunds(p.ID, 100, "", "tester")
	require.NoError(t, err)

	pid := p.ID
	_, err = e.AddPayment(PaymentInput{
		Date:        time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
		SupplierID:  s.ID,
		Amount:      200,
		SourceType:  models.SourceCustody,
		PurchaserID: &pid,
	}, "tester")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Nothing half-applied: balance untouched, no payment row.
	assert.Equal(t, 100.0, custodyBalance(t, store, p.ID))
	var count int64
	require.NoError(t, store.DB.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCustodyUnknownPurchaser(t *testing.T) {
	e, _ := testEngine(t)
	s := testSupplier(t, e)

	_, err := e.AddCustodyFunds(99, 100, "", "tester")
	assert.ErrorIs(t, err, ErrNotFound)

	pid := uint(99)
	_, err = e.AddPayment(PaymentInput{
		Date:        time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
		SupplierID:  s.ID,
		Amount:      50,
		SourceType:  models.SourceCustody,
		PurchaserID: &pid,
	}, "tester")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddPaymentValidation(t *testing.T) {
	e, _ := testEngine(t)
	s := testSupplier(t, e)

	_, err := e.AddPayment(PaymentInput{
		Date: time.Now(), SupplierID: s.ID, Amount: -5, SourceType: models.SourceTreasury,
	}, "tester")
	assert.True(t, IsValidation(err))

	_, err = e.AddPayment(PaymentInput{
		Date: time.Now(), SupplierID: s.ID, Amount: 50, SourceType: "wallet",
	}, "tester")
	assert.True(t, IsValidation(err))

	_, err = e.AddPayment(PaymentInput{
		Date: time.Now(), SupplierID: s.ID, Amount: 50, SourceType: models.SourceCustody,
	}, "tester")
	assert.True(t, IsValidation(err), "custody payments need a purchaser")

	_, err = e.AddPayment(PaymentInput{
		Date: time.Now(), SupplierID: 99, Amount: 50, SourceType: models.SourceTreasury,
	}, "tester")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddExpenseAddsCategory(t *testing.T) {
	e, store := testEngine(t)

	_, err := e.AddExpense(ExpenseInput{
		Date:        time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Description: "صيانة",
		Amount:      75,
		Category:    "صيانة",
	}, "tester")
	require.NoError(t, err)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	assert.Contains(t, snap.ExpenseCategories(), "صيانة")
	assert.Contains(t, snap.ExpenseCategories(), "إعلانية", "defaults survive")
}

func TestAddExpenseRejectsReservedCategory(t *testing.T) {
	e, _ := testEngine(t)

	_, err := e.AddExpense(ExpenseInput{
		Date:        time.Now(),
		Description: "تحويل",
		Amount:      75,
		Category:    models.CategoryCustodyTransfer,
	}, "tester")
	assert.True(t, IsValidation(err), "custody transfers only come from the top-up flow")
}

func TestUpdateSettingsFiltersReservedCategory(t *testing.T) {
	e, store := testEngine(t)

	err := e.UpdateSettings("SA0380000000608010167519", []string{"إعلانية", models.CategoryCustodyTransfer, " "}, "tester")
	require.NoError(t, err)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "SA0380000000608010167519", snap.Settings.BankAccountNumber)
	assert.Equal(t, []string{"إعلانية"}, snap.ExpenseCategories())
}

func TestAuditTrail(t *testing.T) {
	e, store := testEngine(t)
	s := testSupplier(t, e)

	_, err := e.CreateOrder(sampleOrder("1001", s.ID), "admin")
	require.NoError(t, err)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Logs, 2, "supplier creation and order creation")

	var actions []string
	for _, l := range snap.Logs {
		assert.NotZero(t, l.Timestamp)
		assert.NotEmpty(t, l.User)
		actions = append(actions, l.Action)
	}
	assert.Contains(t, strings.Join(actions, "\n"), "إضافة طلب جديد #1001")
	assert.Contains(t, strings.Join(actions, "\n"), "إضافة مورد جديد")
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	e, store := testEngine(t)

	ch, cancel := store.Subscribe()
	defer cancel()

	_, err := e.CreatePurchaser("سعد", "tester")
	require.NoError(t, err)

	select {
	case snap := <-ch:
		require.Len(t, snap.Purchasers, 1)
		assert.Equal(t, "سعد", snap.Purchasers[0].Name)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received after a commit")
	}
}
