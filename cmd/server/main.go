package main

import (
	"log"
	"os"
	"time"

	"go-books-agent/internal/database"
	"go-books-agent/internal/handlers"
	"go-books-agent/internal/ledger"
	"go-books-agent/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: No .env file found")
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is required (user:pass@tcp(host:3306)/books?charset=utf8mb4&parseTime=True&loc=Local)")
	}

	store, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("Database connection failed:", err)
	}
	engine := ledger.NewEngine(store)
	api := handlers.NewAPI(store, engine)

	r := gin.Default()

	// --- CORS: allow the dashboard frontend ---
	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "http://localhost:5173"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", api.Login)
	r.POST("/register", api.Register) // bootstrap always works; later users need the flag
	r.Static("/uploads", "./uploads")

	if os.Getenv("ALLOW_REGISTRATION") == "true" {
		log.Println("⚠️ WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("🔒 Registration limited to the first (bootstrap) user.")
	}

	// --- PROTECTED ROUTES ---
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		// STAFF & ADMIN
		protected.GET("/dashboard", api.GetDashboard)
		protected.GET("/options", api.GetFinanceOptions)

		protected.GET("/orders", api.GetOrders)
		protected.POST("/orders", api.CreateOrder)
		protected.PUT("/orders/:id", api.UpdateOrder)

		protected.GET("/products", api.GetMasterProducts)

		// ADMIN ONLY: everything that exposes costs or moves money
		admin := protected.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/products", api.CreateMasterProduct)
			admin.PUT("/products/:id", api.UpdateMasterProduct)
			admin.DELETE("/products/:id", api.DeleteMasterProduct)

			admin.GET("/suppliers", api.GetSuppliers)
			admin.POST("/suppliers", api.CreateSupplier)
			admin.GET("/suppliers/:id/details", api.GetSupplierDetails)
			admin.GET("/suppliers/:id/statement", api.GetSupplierStatement)

			admin.GET("/expenses", api.GetExpenses)
			admin.POST("/expenses", api.AddExpense)

			admin.GET("/purchasers", api.GetPurchasers)
			admin.POST("/purchasers", api.CreatePurchaser)
			admin.POST("/purchasers/:id/funds", api.AddCustodyFunds)
			admin.POST("/purchasers/:id/expenses", api.AddCustodyExpense)

			admin.GET("/payments", api.GetPayments)
			admin.POST("/payments", api.AddPayment)

			admin.GET("/gateways", api.GetGatewayReports)
			admin.POST("/settlements", api.AddSettlement)
			admin.POST("/upload", api.UploadAttachment)

			admin.GET("/settings", api.GetSettings)
			admin.PUT("/settings", api.UpdateSettings)
			admin.GET("/logs", api.GetLogs)

			admin.POST("/ai/parse-invoice", api.ParseInvoice)
		}
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	log.Println("🚀 Server starting on " + baseURL)
	if err := r.Run(":8080"); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
