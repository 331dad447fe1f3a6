package ledger

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go-books-agent/internal/database"
	"go-books-agent/internal/finance"
	"go-books-agent/internal/models"

	"gorm.io/gorm"
)

// Engine is the only writer to the ledger store. Every money movement
// that touches more than one record goes through a single transaction
// here, so readers never observe a payment without its balance change.
// Each mutation also appends its own audit log row before committing.
type Engine struct {
	store *database.Store
}

func NewEngine(store *database.Store) *Engine {
	return &Engine{store: store}
}

var (
	saudiMobileRe = regexp.MustCompile(`^05\d{8}$`)
	emailRe       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// run wraps a unit of work in a transaction and notifies snapshot
// subscribers once it has committed.
func (e *Engine) run(fn func(tx *gorm.DB) error) error {
	if err := e.store.DB.Transaction(fn); err != nil {
		return err
	}
	e.store.Notify()
	return nil
}

func appendLog(tx *gorm.DB, actor, action string) error {
	return tx.Create(&models.AuditLog{
		Timestamp: time.Now(),
		User:      actor,
		Action:    action,
	}).Error
}

func fmtAmount(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}

// --- Orders ---

type OrderLineInput struct {
	MasterProductID *uint   `json:"master_product_id"`
	Name            string  `json:"name"`
	Cost            float64 `json:"cost"`
	SupplierID      uint    `json:"supplier_id"`
}

type OrderInput struct {
	Date            time.Time        `json:"date"`
	OrderNumber     string           `json:"order_number"`
	CustomerName    string           `json:"customer_name"`
	OrderTotal      float64          `json:"order_total"`
	DeliveryFee     *float64         `json:"delivery_fee"` // nil = take the carrier's fixed rate
	GatewayFee      *float64         `json:"gateway_fee"`  // nil = compute from the fee rule
	ShippingCompany string           `json:"shipping_company"`
	PaymentMethod   string           `json:"payment_method"`
	Status          string           `json:"status"`
	CancellationFee float64          `json:"cancellation_fee"`
	Products        []OrderLineInput `json:"products"`
}

func (in *OrderInput) validate() error {
	in.OrderNumber = strings.TrimSpace(in.OrderNumber)
	if in.OrderNumber == "" {
		return invalid("order_number", "رقم الطلب مطلوب")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return invalid("customer_name", "اسم العميل مطلوب")
	}
	if in.Date.IsZero() {
		return invalid("date", "تاريخ الطلب مطلوب")
	}
	if in.OrderTotal <= 0 {
		return invalid("order_total", "قيمة الطلب يجب أن تكون أكبر من صفر")
	}
	if in.GatewayFee != nil && *in.GatewayFee < 0 {
		return invalid("gateway_fee", "رسوم البوابة لا يمكن أن تكون سالبة")
	}
	if in.CancellationFee < 0 {
		return invalid("cancellation_fee", "رسوم الإلغاء لا يمكن أن تكون سالبة")
	}
	if _, ok := finance.GatewayByID(in.PaymentMethod); !ok {
		return invalid("payment_method", "وسيلة دفع غير معروفة")
	}
	if !finance.KnownShippingID(in.ShippingCompany) {
		return invalid("shipping_company", "شركة شحن غير معروفة")
	}
	if len(in.Products) == 0 {
		return invalid("products", "الطلب يجب أن يحتوي منتجاً واحداً على الأقل")
	}
	for _, p := range in.Products {
		if strings.TrimSpace(p.Name) == "" {
			return invalid("products", "اسم المنتج مطلوب")
		}
		if p.Cost <= 0 {
			return invalid("products", fmt.Sprintf("تكلفة المنتج %q غير صالحة", p.Name))
		}
		if p.SupplierID == 0 {
			return invalid("products", fmt.Sprintf("المنتج %q بدون مورد", p.Name))
		}
	}
	switch in.Status {
	case "":
		in.Status = models.StatusCompleted
	case models.StatusCompleted, models.StatusCancelled, models.StatusReturned:
	default:
		return invalid("status", "حالة طلب غير معروفة")
	}
	return nil
}

// resolveFees fills the delivery and gateway fees the same way the order
// form does: fixed carrier rates overwrite, the fee rule fills in unless
// the caller overrode it.
func (in *OrderInput) resolveFees() error {
	if fee, fixed := finance.ResolveDeliveryFee(in.ShippingCompany); fixed {
		in.DeliveryFee = &fee
	} else if in.DeliveryFee == nil || *in.DeliveryFee < 0 {
		return invalid("delivery_fee", "شركة الشحن هذه تتطلب إدخال تكلفة التوصيل يدوياً")
	}
	if in.GatewayFee == nil {
		fee := finance.ComputeGatewayFee(in.PaymentMethod, in.OrderTotal)
		in.GatewayFee = &fee
	}
	return nil
}

func (in OrderInput) lines() []models.OrderProduct {
	lines := make([]models.OrderProduct, 0, len(in.Products))
	for _, p := range in.Products {
		lines = append(lines, models.OrderProduct{
			MasterProductID: p.MasterProductID,
			Name:            strings.TrimSpace(p.Name),
			Cost:            p.Cost,
			SupplierID:      p.SupplierID,
		})
	}
	return lines
}

// CreateOrder validates and stores a new order with its lines. The order
// number must be unique across all orders; CreatedAt is set here, not by
// the caller.
func (e *Engine) CreateOrder(in OrderInput, actor string) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := in.resolveFees(); err != nil {
		return nil, err
	}

	order := models.Order{
		Date:            in.Date,
		OrderNumber:     in.OrderNumber,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		OrderTotal:      in.OrderTotal,
		DeliveryFee:     *in.DeliveryFee,
		GatewayFee:      *in.GatewayFee,
		ShippingCompany: in.ShippingCompany,
		PaymentMethod:   in.PaymentMethod,
		Status:          in.Status,
		CancellationFee: in.CancellationFee,
		CreatedAt:       time.Now(),
		Products:        in.lines(),
	}

	err := e.run(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Order{}).Where("order_number = ?", order.OrderNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("رقم الطلب %s موجود مسبقاً: %w", order.OrderNumber, ErrDuplicate)
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return appendLog(tx, actor, fmt.Sprintf("إضافة طلب جديد #%s", order.OrderNumber))
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder rewrites an order (status transitions and fee corrections
// included). CreatedAt never changes. A status change to a non-completed
// state with zero cancellation fee is logged as a goodwill settlement.
func (e *Engine) UpdateOrder(id uint, in OrderInput, actor string) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := in.resolveFees(); err != nil {
		return nil, err
	}

	var order models.Order
	err := e.run(func(tx *gorm.DB) error {
		if err := tx.Preload("Products").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("الطلب %d: %w", id, ErrNotFound)
			}
			return err
		}
		var count int64
		if err := tx.Model(&models.Order{}).
			Where("order_number = ? AND id <> ?", in.OrderNumber, id).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("رقم الطلب %s موجود مسبقاً لطلب آخر: %w", in.OrderNumber, ErrDuplicate)
		}

		oldStatus := order.Status

		order.Date = in.Date
		order.OrderNumber = in.OrderNumber
		order.CustomerName = strings.TrimSpace(in.CustomerName)
		order.OrderTotal = in.OrderTotal
		order.DeliveryFee = *in.DeliveryFee
		order.GatewayFee = *in.GatewayFee
		order.ShippingCompany = in.ShippingCompany
		order.PaymentMethod = in.PaymentMethod
		order.Status = in.Status
		order.CancellationFee = in.CancellationFee

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderProduct{}).Error; err != nil {
			return err
		}
		order.Products = in.lines()
		for i := range order.Products {
			order.Products[i].OrderID = order.ID
		}
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		action := fmt.Sprintf("تحديث بيانات الطلب #%s", order.OrderNumber)
		if oldStatus != order.Status {
			action = fmt.Sprintf("تغيير حالة الطلب #%s إلى %s", order.OrderNumber, order.Status)
			if order.Status != models.StatusCompleted && order.CancellationFee == 0 {
				action += " (تسوية ودية)"
			}
		}
		return appendLog(tx, actor, action)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// --- Suppliers ---

type SupplierInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	City    string `json:"city"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// CreateSupplier enforces the Saudi mobile format and case-insensitive
// name uniqueness before anything is written.
func (e *Engine) CreateSupplier(in SupplierInput, actor string) (*models.Supplier, error) {
	name := strings.TrimSpace(in.Name)
	contact := strings.TrimSpace(in.Contact)
	if name == "" || contact == "" || strings.TrimSpace(in.City) == "" {
		return nil, invalid("supplier", "الرجاء تعبئة جميع حقول المورد الإلزامية")
	}
	if !saudiMobileRe.MatchString(contact) {
		return nil, invalid("contact", "الرجاء إدخال رقم جوال سعودي صحيح (10 أرقام يبدأ بـ 05)")
	}
	if in.Email != "" && !emailRe.MatchString(in.Email) {
		return nil, invalid("email", "الرجاء إدخال بريد إلكتروني صحيح")
	}

	supplier := models.Supplier{
		Name:    name,
		Contact: contact,
		City:    strings.TrimSpace(in.City),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
	}
	err := e.run(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Supplier{}).
			Where("LOWER(name) = ?", strings.ToLower(name)).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("اسم المورد موجود مسبقاً: %w", ErrDuplicate)
		}
		if err := tx.Create(&supplier).Error; err != nil {
			return err
		}
		return appendLog(tx, actor, fmt.Sprintf("إضافة مورد جديد: %s", supplier.Name))
	})
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// --- Master products ---

type MasterProductInput struct {
	Name       string  `json:"name"`
	Cost       float64 `json:"cost"`
	SupplierID uint    `json:"supplier_id"`
}

func (e *Engine) CreateMasterProduct(in MasterProductInput, actor string) (*models.MasterProduct, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name", "اسم المنتج مطلوب")
	}
	if in.Cost < 0 {
		return nil, invalid("cost", "التكلفة لا يمكن أن تكون سالبة")
	}

	product := models.MasterProduct{
		Name:       strings.TrimSpace(in.Name),
		Cost:       in.Cost,
		SupplierID: in.SupplierID,
	}
	err := e.run(func(tx *gorm.DB) error {
		if in.SupplierID != 0 {
			var supplier models.Supplier
			if err := tx.First(&supplier, in.SupplierID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("المورد %d: %w", in.SupplierID, ErrNotFound)
				}
				return err
			}
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		return appendLog(tx, actor, fmt.Sprintf("إضافة منتج: %s", product.Name))
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (e *Engine) UpdateMasterProduct(id uint, in MasterProductInput, actor string) (*models.MasterProduct, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name", "اسم المنتج مطلوب")
	}
	if in.Cost < 0 {
		return nil, invalid("cost", "التكلفة لا يمكن أن تكون سالبة")
	}

	var product models.MasterProduct
	err := e.run(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("المنتج %d: %w", id, ErrNotFound)
			}
			return err
		}
		product.Name = strings.TrimSpace(in.Name)
		product.Cost = in.Cost
		product.SupplierID = in.SupplierID
		if err := tx.Save(&product).Error; err != nil {
			return err
		}
		return appendLog(tx, actor, fmt.Sprintf("تحديث المنتج: %s", product.Name))
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (e *Engine) DeleteMasterProduct(id uint, actor string) error {
	return e.run(func(tx *gorm.DB) error {
		var product models.MasterProduct
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("المنتج %d: %w", id, ErrNotFound)
			}
			return err
		}
		if err := tx.Delete(&product).Error; err != nil {
			return err
		}
		return appendLog(tx, actor, fmt.Sprintf("حذف المنتج: %s", product.Name))
	})
}

// --- Purchasers & custody ---

func (e *Engine) CreatePurchaser(name, actor string) (*models.Purchaser, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "اسم مسؤول المشتريات مطلوب")
	}
	purchaser := models.Purchaser{Name: name}
	err := e.run(func(tx *gorm.DB) error {
		if err := tx.Create(&purchaser).Error; err != nil {
			return err
		}
		return appendLog(tx, actor, fmt.Sprintf("إضافة مسؤول مشتريات: %s", purchaser.Name))
	})
	if err != nil {
		return nil, err
	}
	return &purchaser, nil
}

// AddCustodyFunds tops up a purchaser's float. The movement is recorded
// as a custody-transfer expense (audit trail only) dated today, and the
// balance increment commits in the same transaction.
func (e *Engine) AddCustodyFunds(purchaserID uint, amount float64, notes, actor string) (*models.Expense, error) {
	if amount <= 0 {
		return nil, invalid("amount", "المبلغ يجب أن يكون أكبر من صفر")
	}

	var expense models.Expense
	err := e.run(func(tx *gorm.DB) error {
		var purchaser models.Purchaser
		if err := tx.First(&purchaser, purchaserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("مسؤول المشتريات %d: %w", purchaserID, ErrNotFound)
			}
			return err
		}

		description := fmt.Sprintf("تحويل عهدة إلى %s", purchaser.Name)
		if notes = strings.TrimSpace(notes); notes != "" {
			description += " - " + notes
		}
		now := time.Now()
		expense = models.Expense{
			Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
			Description: description,
			Amount:      amount,
			Category:    models.CategoryCustodyTransfer,
			Kind:        models.ExpenseKindCustodyTransfer,
			PurchaserID: &purchaser.ID,
			CreatedAt:   now,
		}
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Purchaser{}).Where("id = ?", purchaser.ID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}
		return appendLog(tx, actor, fmt.Sprintf("تحويل عهدة إلى %s بقيمة %s ر.س", purchaser.Name, fmtAmount(amount)))
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

type CustodyExpenseInput struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	PurchaserID uint      `json:"purchaser_id"`
}

// AddCustodyExpense records an operational expense paid out of a
// purchaser's float and decrements the float atomically with it.
func (e *Engine) AddCustodyExpense(in CustodyExpenseInput, actor string) (*models.Expense, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalid("description", "وصف المصروف مطلوب")
	}
	if in.Amount <= 0 {
		return nil, invalid("amount", "المبلغ يجب أن يكون أكبر من صفر")
	}
	if in.Date.IsZero() {
		return nil, invalid("date", "تاريخ المصروف مطلوب")
	}

	var expense models.Expense
	err := e.run(func(tx *gorm.DB) error {
		var purchaser models.Purchaser
		if err := tx.First(&purchaser, in.PurchaserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("مسؤول المشتريات %d: %w", in.PurchaserID, ErrNotFound)
			}
			return err
		}
		expense = models.Expense{
			Date:        in.Date,
			Description: strings.TrimSpace(in.Description),
			Amount:      in.Amount,
			Category:    in.Category,
			Kind:        models.ExpenseKindNormal,
			PurchaserID: &purchaser.ID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Purchaser{}).Where("id = ?", purchaser.ID).
			UpdateColumn("balance", gorm.Expr("balance - ?", in.Amount)).Error; err != nil {
			return err
		}
		return appendLog(tx, actor, fmt.Sprintf("تسجيل مصروف من العهدة: %s بقيمة %s ر.س", expense.Description, fmtAmount(in.Amount)))
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// --- Expenses ---

type ExpenseInput struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
}

// AddExpense records a treasury expense. A category not yet in the
// settings list is added to it in the same transaction.
func (e *Engine) AddExpense(in ExpenseInput, actor string) (*models.Expense, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalid("description", "وصف المصروف مطلوب")
	}
	if in.Amount <= 0 {
		return nil, invalid("amount", "المبلغ يجب أن يكون أكبر من صفر")
	}
	if in.Date.IsZero() {
		return nil, invalid("date", "تاريخ المصروف مطلوب")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" || category == models.CategoryCustodyTransfer {
		return nil, invalid("category", "فئة مصروف غير صالحة")
	}

	expense := models.Expense{
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Category:    category,
		Kind:        models.ExpenseKindNormal,
		CreatedAt:   time.Now(),
	}
	err := e.run(func(tx *gorm.DB) error {
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		if err := ensureCategory(tx, category); err != nil {
			return err
		}
		return appendLog(tx, actor, fmt.Sprintf("تسجيل مصروف: %s بقيمة %s ر.س", expense.Description, fmtAmount(in.Amount)))
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func ensureCategory(tx *gorm.DB, category string) error {
	var setting models.Setting
	if err := tx.First(&setting, 1).Error; err != nil {
		return err
	}
	cats := database.DefaultExpenseCategories
	if setting.ExpenseCategories != "" {
		cats = decodeCategories(setting.ExpenseCategories)
	}
	for _, c := range cats {
		if c == category {
			return nil
		}
	}
	cats = append(cats, category)
	setting.ExpenseCategories = encodeCategories(cats)
	return tx.Save(&setting).Error
}

// --- Payments ---

type PaymentInput struct {
	Date        time.Time `json:"date"`
	SupplierID  uint      `json:"supplier_id"`
	Amount      float64   `json:"amount"`
	SourceType  string    `json:"source_type"`
	PurchaserID *uint     `json:"purchaser_id"`
}

// AddPayment pays a supplier from the treasury or from custody. The
// custody decrement is a conditional update inside the transaction, so
// two racing payments can never overdraw a float: the second one fails
// with ErrInsufficientBalance and writes nothing.
func (e *Engine) AddPayment(in PaymentInput, actor string) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, invalid("amount", "المبلغ يجب أن يكون أكبر من صفر")
	}
	if in.Date.IsZero() {
		return nil, invalid("date", "تاريخ الدفعة مطلوب")
	}
	switch in.SourceType {
	case models.SourceTreasury:
		in.PurchaserID = nil
	case models.SourceCustody:
		if in.PurchaserID == nil {
			return nil, invalid("purchaser_id", "الدفع من العهدة يتطلب اختيار مسؤول المشتريات")
		}
	default:
		return nil, invalid("source_type", "مصدر دفع غير معروف")
	}

	var payment models.Payment
	err := e.run(func(tx *gorm.DB) error {
		var supplier models.Supplier
		if err := tx.First(&supplier, in.SupplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("المورد %d: %w", in.SupplierID, ErrNotFound)
			}
			return err
		}

		if in.SourceType == models.SourceCustody {
			res := tx.Model(&models.Purchaser{}).
				Where("id = ? AND balance >= ?", *in.PurchaserID, in.Amount).
				UpdateColumn("balance", gorm.Expr("balance - ?", in.Amount))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var purchaser models.Purchaser
				if err := tx.First(&purchaser, *in.PurchaserID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("مسؤول المشتريات %d: %w", *in.PurchaserID, ErrNotFound)
					}
					return err
				}
				return fmt.Errorf("رصيد العهدة %s أقل من المبلغ المطلوب: %w", fmtAmount(purchaser.Balance), ErrInsufficientBalance)
			}
		}

		payment = models.Payment{
			Date:        in.Date,
			SupplierID:  in.SupplierID,
			Amount:      in.Amount,
			SourceType:  in.SourceType,
			PurchaserID: in.PurchaserID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return appendLog(tx, actor, fmt.Sprintf("سداد دفعة للمورد %s بقيمة %s ر.س", supplier.Name, fmtAmount(in.Amount)))
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// --- Settlements ---

type SettlementInput struct {
	GatewayID  string    `json:"gateway_id"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	Attachment string    `json:"attachment"`
	Notes      string    `json:"notes"`
}

// AddSettlement records net funds received from a gateway. No balance
// mutation: the outstanding figure is always recomputed from orders and
// settlements.
func (e *Engine) AddSettlement(in SettlementInput, actor string) (*models.Settlement, error) {
	if strings.TrimSpace(in.GatewayID) == "" {
		return nil, invalid("gateway_id", "بوابة الدفع مطلوبة")
	}
	if in.Amount <= 0 {
		return nil, invalid("amount", "المبلغ يجب أن يكون أكبر من صفر")
	}
	if in.Date.IsZero() {
		return nil, invalid("date", "تاريخ التسوية مطلوب")
	}

	settlement := models.Settlement{
		GatewayID:  strings.TrimSpace(in.GatewayID),
		Amount:     in.Amount,
		Date:       in.Date,
		Attachment: in.Attachment,
		Notes:      strings.TrimSpace(in.Notes),
		User:       actor,
		CreatedAt:  time.Now(),
	}
	err := e.run(func(tx *gorm.DB) error {
		if err := tx.Create(&settlement).Error; err != nil {
			return err
		}
		return appendLog(tx, actor, fmt.Sprintf("تسجيل تسوية لـ %s بقيمة %s ر.س", settlement.GatewayID, fmtAmount(in.Amount)))
	})
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

// --- Settings ---

// UpdateSettings replaces the bank account number and category list.
// The reserved custody-transfer category cannot be removed from use;
// it is not part of the editable list.
func (e *Engine) UpdateSettings(bankAccountNumber string, categories []string, actor string) error {
	cleaned := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c != "" && c != models.CategoryCustodyTransfer {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return invalid("expense_categories", "قائمة الفئات لا يمكن أن تكون فارغة")
	}

	return e.run(func(tx *gorm.DB) error {
		var setting models.Setting
		if err := tx.First(&setting, 1).Error; err != nil {
			return err
		}
		setting.BankAccountNumber = strings.TrimSpace(bankAccountNumber)
		setting.ExpenseCategories = encodeCategories(cleaned)
		if err := tx.Save(&setting).Error; err != nil {
			return err
		}
		return appendLog(tx, actor, "تحديث الإعدادات")
	})
}
