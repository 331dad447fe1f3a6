package models

import (
	"time"
)

// Order statuses are stored in Arabic, exactly as the store documents
// have always been written. Do not translate these values.
const (
	StatusCompleted = "مكتمل"
	StatusCancelled = "ملغي"
	StatusReturned  = "مرتجع"
)

// Expense kinds. A custody transfer moves money from the treasury into a
// purchaser's float; it is an audit record, NOT a real expense, and every
// profit/expense total must skip it.
const (
	ExpenseKindNormal          = "normal"
	ExpenseKindCustodyTransfer = "custody_transfer"
)

// CategoryCustodyTransfer is the reserved display category written on
// custody top-ups. Logic keys off Expense.Kind, never off this string.
const CategoryCustodyTransfer = "تحويل عهدة"

// Payment funding sources
const (
	SourceTreasury = "treasury"
	SourceCustody  = "custody"
)

// User - The person interacting with the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'employee'
	Email        string    `gorm:"uniqueIndex;size:120" json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

// Supplier - Who we buy perfume stock from
type Supplier struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"uniqueIndex;size:100" json:"name"`
	Contact string `json:"contact"` // Saudi mobile, 05XXXXXXXX
	City    string `json:"city"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// MasterProduct - Catalog entry used to prefill order line costs
type MasterProduct struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Name       string  `json:"name"`
	Cost       float64 `json:"cost"`
	SupplierID uint    `json:"supplier_id"`
}

// Order - The Sale Header
type Order struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Date            time.Time      `json:"date"`
	OrderNumber     string         `gorm:"uniqueIndex;size:50" json:"order_number"`
	CustomerName    string         `json:"customer_name"`
	OrderTotal      float64        `json:"order_total"`
	DeliveryFee     float64        `json:"delivery_fee"`
	GatewayFee      float64        `json:"gateway_fee"` // derived from the fee rule, user-editable afterward
	ShippingCompany string         `json:"shipping_company"`
	PaymentMethod   string         `json:"payment_method"`
	Status          string         `json:"status"`
	CancellationFee float64        `json:"cancellation_fee"` // only meaningful when status != completed
	CreatedAt       time.Time      `json:"created_at"`
	Products        []OrderProduct `gorm:"foreignKey:OrderID" json:"products"`
}

// OrderProduct - A line inside an order, with its cost snapshot and the
// supplier the goods came from. The supplier balance maths hang off this.
type OrderProduct struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	OrderID         uint    `json:"order_id"`
	MasterProductID *uint   `json:"master_product_id"` // nil for ad-hoc lines typed in by hand
	Name            string  `json:"name"`
	Cost            float64 `json:"cost"`
	SupplierID      uint    `json:"supplier_id"`
}

// Purchaser - A buying agent holding a cash float (custody / عهدة).
// Balance is a materialized running total; every change to it commits in
// the same transaction as the payment/expense/top-up that caused it.
type Purchaser struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// Payment - Money paid to a supplier, from the treasury or from a
// purchaser's custody float.
type Payment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        time.Time `json:"date"`
	SupplierID  uint      `json:"supplier_id"`
	Amount      float64   `json:"amount"`
	SourceType  string    `json:"source_type"`  // 'treasury' or 'custody'
	PurchaserID *uint     `json:"purchaser_id"` // required when source is custody
	CreatedAt   time.Time `json:"created_at"`
}

// Expense - An operational expense, or (Kind=custody_transfer) the audit
// record of a custody top-up.
type Expense struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Kind        string    `gorm:"size:20;default:normal" json:"kind"`
	PurchaserID *uint     `json:"purchaser_id"` // set for custody-sourced expenses and transfers
	CreatedAt   time.Time `json:"created_at"`
}

// Settlement - Net funds a payment gateway wired into the bank account.
// Informational only: the outstanding gateway balance is always recomputed,
// never stored.
type Settlement struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GatewayID  string    `gorm:"size:100" json:"gateway_id"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	Attachment string    `json:"attachment"` // URL of the uploaded receipt, optional
	Notes      string    `json:"notes"`
	User       string    `json:"user"` // who recorded it
	CreatedAt  time.Time `json:"created_at"`
}

// AuditLog - Append-only trail of user actions. Immutable once written.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
}

// Setting - Single-row app settings. ExpenseCategories is a JSON-encoded
// list of allowed category names.
type Setting struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	BankAccountNumber string `json:"bank_account_number"`
	ExpenseCategories string `json:"expense_categories"`
}
