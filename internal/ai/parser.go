package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-books-agent/internal/database"
	"go-books-agent/internal/finance"
	"go-books-agent/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ParsedProduct is one line the model extracted from the invoice text.
type ParsedProduct struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ParsedInvoice is the structured draft the model returns. Every field
// is best-effort; the reconciler below snaps it onto known carriers,
// gateways and catalog products before the UI sees it.
type ParsedInvoice struct {
	OrderNumber     string          `json:"orderNumber"`
	CustomerName    string          `json:"customerName"`
	OrderTotal      float64         `json:"orderTotal"`
	DeliveryFee     float64         `json:"deliveryFee"`
	ShippingCompany string          `json:"shippingCompany"`
	PaymentMethod   string          `json:"paymentMethod"`
	Products        []ParsedProduct `json:"products"`
}

// DraftLine is a reconciled invoice line: matched against the master
// catalog when possible, so cost and supplier come prefilled.
type DraftLine struct {
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	MasterProductID *uint   `json:"master_product_id"`
	Cost            float64 `json:"cost"`
	SupplierID      uint    `json:"supplier_id"`
	Matched         bool    `json:"matched"`
}

// OrderDraft is what the order form gets prefilled with. Nothing is
// written to the ledger here; the user still reviews and submits.
type OrderDraft struct {
	Date            time.Time   `json:"date"`
	OrderNumber     string      `json:"order_number"`
	CustomerName    string      `json:"customer_name"`
	OrderTotal      float64     `json:"order_total"`
	DeliveryFee     float64     `json:"delivery_fee"`
	GatewayFee      float64     `json:"gateway_fee"`
	ShippingCompany string      `json:"shipping_company"`
	PaymentMethod   string      `json:"payment_method"`
	Products        []DraftLine `json:"products"`
}

// ParseInvoice sends the raw invoice text to Gemini with a strict JSON
// response schema, then reconciles the result against the live catalog.
func ParseInvoice(ctx context.Context, apiKey, invoiceText string, snap database.Snapshot) (*OrderDraft, error) {
	if strings.TrimSpace(invoiceText) == "" {
		return nil, fmt.Errorf("invoice text is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.5-flash")
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"orderNumber":     {Type: genai.TypeString, Description: "Order or invoice number"},
			"customerName":    {Type: genai.TypeString, Description: "Customer full name"},
			"orderTotal":      {Type: genai.TypeNumber, Description: "Grand total in SAR"},
			"deliveryFee":     {Type: genai.TypeNumber, Description: "Delivery/shipping fee in SAR, 0 if absent"},
			"shippingCompany": {Type: genai.TypeString, Description: "Shipping carrier name as written"},
			"paymentMethod":   {Type: genai.TypeString, Description: "Payment method as written"},
			"products": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":     {Type: genai.TypeString, Description: "Product name"},
						"quantity": {Type: genai.TypeInteger, Description: "Quantity, default 1"},
					},
					Required: []string{"name"},
				},
			},
		},
		Required: []string{"orderNumber", "orderTotal", "products"},
	}

	prompt := fmt.Sprintf(`You extract order data from perfume store invoices (Arabic or English).
Return ONLY the JSON object. Amounts are in Saudi Riyal. If a field is
missing use an empty string or 0.

INVOICE:
%s`, invoiceText)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("model returned no content")
	}

	var parsed ParsedInvoice
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return reconcile(parsed, snap), nil
}

// reconcile snaps the model output onto known IDs. Unknown carriers fall
// back to the manual-cost option, unknown payment methods to the
// zero-fee bank transfer, and product names are matched case-insensitively
// against the master catalog.
func reconcile(parsed ParsedInvoice, snap database.Snapshot) *OrderDraft {
	draft := &OrderDraft{
		Date:         time.Now(),
		OrderNumber:  strings.TrimSpace(parsed.OrderNumber),
		CustomerName: strings.TrimSpace(parsed.CustomerName),
		OrderTotal:   parsed.OrderTotal,
	}

	draft.ShippingCompany = matchShipping(parsed.ShippingCompany)
	if fee, fixed := finance.ResolveDeliveryFee(draft.ShippingCompany); fixed {
		draft.DeliveryFee = fee
	} else {
		draft.DeliveryFee = parsed.DeliveryFee
	}

	draft.PaymentMethod = matchGateway(parsed.PaymentMethod)
	draft.GatewayFee = finance.ComputeGatewayFee(draft.PaymentMethod, draft.OrderTotal)

	catalog := make(map[string]models.MasterProduct, len(snap.MasterProducts))
	for _, mp := range snap.MasterProducts {
		catalog[strings.ToLower(strings.TrimSpace(mp.Name))] = mp
	}

	for _, p := range parsed.Products {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		qty := p.Quantity
		if qty < 1 {
			qty = 1
		}
		line := DraftLine{Name: name, Quantity: qty}
		if mp, ok := catalog[strings.ToLower(name)]; ok {
			id := mp.ID
			line.MasterProductID = &id
			line.Cost = mp.Cost
			line.SupplierID = mp.SupplierID
			line.Matched = true
		}
		draft.Products = append(draft.Products, line)
	}
	return draft
}

func matchShipping(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != "" {
		for _, opt := range finance.ShippingOptions {
			if strings.Contains(name, strings.ToLower(opt.ID)) || strings.Contains(strings.ToLower(opt.Name), name) {
				return opt.ID
			}
		}
	}
	return finance.ShippingOther
}

func matchGateway(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != "" {
		for _, g := range finance.PaymentGateways {
			if strings.Contains(name, strings.ToLower(g.ID)) || strings.Contains(strings.ToLower(g.Name), name) {
				return g.ID
			}
		}
	}
	return finance.DefaultPaymentMethod
}

func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return ""
}
