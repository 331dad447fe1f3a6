package finance

import (
	"github.com/shopspring/decimal"
)

// VATRate is the single Saudi VAT rate applied on top of gateway fees.
const VATRate = 0.15

// Gateway is one payment method and its processor fee formula:
// (total * Rate + FlatFee) * (1 + VAT), rounded to 2 decimals.
type Gateway struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Rate        float64 `json:"rate"`
	FlatFee     float64 `json:"flat_fee"`
	Description string `json:"description"`
}

// PaymentGateways holds the processor contracts the store actually has.
// IDs are the values stored on orders, so they never change.
var PaymentGateways = []Gateway{
	{ID: "مدى", Name: "مدى", Rate: 0.01, FlatFee: 1, Description: "1% + 1 ر.س (+15% ضريبة)"},
	{ID: "Apple Pay", Name: "Apple Pay", Rate: 0.022, FlatFee: 1, Description: "2.2% + 1 ر.س (+15% ضريبة)"},
	{ID: "فيزا/ماستركارد", Name: "فيزا/ماستركارد", Rate: 0.022, FlatFee: 1, Description: "2.2% + 1 ر.س (+15% ضريبة)"},
	{ID: "STC Pay", Name: "STC Pay", Rate: 0.015, FlatFee: 0, Description: "1.5% (+15% ضريبة)"},
	{ID: "تمارا", Name: "تمارا", Rate: 0.0599, FlatFee: 1.5, Description: "5.99% + 1.5 ر.س (+15% ضريبة)"},
	{ID: "تابي", Name: "تابي", Rate: 0.045, FlatFee: 1, Description: "4.5% + 1 ر.س (+15% ضريبة)"},
	{ID: "مدفوع", Name: "مدفوع", Rate: 0.02, FlatFee: 1, Description: "2% + 1 ر.س (+15% ضريبة)"},
	{ID: "تحويل بنكي", Name: "تحويل بنكي", Rate: 0, FlatFee: 0, Description: "لا توجد رسوم"},
	{ID: "الدفع عند الاستلام", Name: "عند الاستلام", Rate: 0, FlatFee: 0, Description: "لا توجد رسوم"},
}

// DefaultPaymentMethod is the fallback when the invoice parser cannot
// identify a gateway.
const DefaultPaymentMethod = "تحويل بنكي"

// GatewayByID looks a gateway up by its stored id.
func GatewayByID(id string) (Gateway, bool) {
	for _, g := range PaymentGateways {
		if g.ID == id {
			return g, true
		}
	}
	return Gateway{}, false
}

// Fee computes the processor cut for one order total. Decimal arithmetic
// keeps the 2dp rounding exact: (350*0.01+1)*1.15 must come out 5.18,
// which float64 gets wrong.
func (g Gateway) Fee(total float64) float64 {
	if total <= 0 || (g.Rate == 0 && g.FlatFee == 0) {
		return 0
	}
	fee := decimal.NewFromFloat(total).
		Mul(decimal.NewFromFloat(g.Rate)).
		Add(decimal.NewFromFloat(g.FlatFee)).
		Mul(decimal.NewFromFloat(1 + VATRate))
	f, _ := fee.Round(2).Float64()
	return f
}

// ComputeGatewayFee is the fee-rule table contract: unknown methods and
// non-positive totals cost nothing.
func ComputeGatewayFee(paymentMethodID string, orderTotal float64) float64 {
	g, ok := GatewayByID(paymentMethodID)
	if !ok {
		return 0
	}
	return g.Fee(orderTotal)
}

// ShippingOption is one carrier. Cost nil means the rate is variable and
// the caller must type the delivery fee in.
type ShippingOption struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Cost *float64 `json:"cost"`
}

// ShippingOther is the catch-all carrier with no fixed rate.
const ShippingOther = "أخرى"

func fixed(v float64) *float64 { return &v }

var ShippingOptions = []ShippingOption{
	{ID: "RedBox", Name: "رد بوكس", Cost: fixed(14.95)},
	{ID: "SMSA", Name: "سمسا", Cost: fixed(29.5)},
	{ID: "iMile/Aramex", Name: "اي مكان/أرامكس", Cost: fixed(27.6)},
	{ID: ShippingOther, Name: "أخرى", Cost: nil},
}

// ResolveDeliveryFee returns the fixed carrier rate, or ok=false when the
// carrier is variable (or unknown) and the fee must be supplied manually.
func ResolveDeliveryFee(shippingCompanyID string) (float64, bool) {
	for _, s := range ShippingOptions {
		if s.ID == shippingCompanyID && s.Cost != nil {
			return *s.Cost, true
		}
	}
	return 0, false
}

// ShippingNameByID resolves a carrier id to its display name, falling
// back to the raw id for values recorded before a carrier was removed.
func ShippingNameByID(id string) string {
	for _, s := range ShippingOptions {
		if s.ID == id {
			return s.Name
		}
	}
	return id
}

// KnownShippingID reports whether the id belongs to the carrier table.
func KnownShippingID(id string) bool {
	for _, s := range ShippingOptions {
		if s.ID == id {
			return true
		}
	}
	return false
}
