package handlers

import (
	"net/http"
	"strconv"

	"go-books-agent/internal/ledger"

	"github.com/gin-gonic/gin"
)

type OrderLineRequest struct {
	MasterProductID *uint   `json:"master_product_id"`
	Name            string  `json:"name"`
	Cost            float64 `json:"cost"`
	SupplierID      uint    `json:"supplier_id"`
}

type OrderRequest struct {
	Date            string             `json:"date" binding:"required"`
	OrderNumber     string             `json:"order_number" binding:"required"`
	CustomerName    string             `json:"customer_name" binding:"required"`
	OrderTotal      float64            `json:"order_total"`
	DeliveryFee     *float64           `json:"delivery_fee"`
	GatewayFee      *float64           `json:"gateway_fee"`
	ShippingCompany string             `json:"shipping_company"`
	PaymentMethod   string             `json:"payment_method"`
	Status          string             `json:"status"`
	CancellationFee float64            `json:"cancellation_fee"`
	Products        []OrderLineRequest `json:"products"`
}

func (r OrderRequest) toInput() (ledger.OrderInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return ledger.OrderInput{}, err
	}
	in := ledger.OrderInput{
		Date:            date,
		OrderNumber:     r.OrderNumber,
		CustomerName:    r.CustomerName,
		OrderTotal:      r.OrderTotal,
		DeliveryFee:     r.DeliveryFee,
		GatewayFee:      r.GatewayFee,
		ShippingCompany: r.ShippingCompany,
		PaymentMethod:   r.PaymentMethod,
		Status:          r.Status,
		CancellationFee: r.CancellationFee,
	}
	for _, p := range r.Products {
		in.Products = append(in.Products, ledger.OrderLineInput{
			MasterProductID: p.MasterProductID,
			Name:            p.Name,
			Cost:            p.Cost,
			SupplierID:      p.SupplierID,
		})
	}
	return in, nil
}

// --- GET: List all orders (newest first, lines included) ---
func (a *API) GetOrders(c *gin.Context) {
	snap, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, snap.Orders)
}

// --- POST: Record a new order ---
func (a *API) CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, use YYYY-MM-DD"})
		return
	}

	order, err := a.Engine.CreateOrder(in, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// --- PUT: Update an order (including status transitions) ---
func (a *API) UpdateOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, use YYYY-MM-DD"})
		return
	}

	order, err := a.Engine.UpdateOrder(uint(id), in, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
