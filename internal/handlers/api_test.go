package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-books-agent/internal/database"
	"go-books-agent/internal/ledger"
	"go-books-agent/internal/middleware"
	"go-books-agent/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testRouter(t *testing.T) (*gin.Engine, *database.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store := database.NewStore(db)
	require.NoError(t, store.AutoMigrate())
	api := NewAPI(store, ledger.NewEngine(store))

	r := gin.New()
	r.POST("/login", api.Login)
	r.POST("/register", api.Register)

	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/dashboard", api.GetDashboard)
	admin := protected.Group("/")
	admin.Use(middleware.RequireRole("admin"))
	admin.GET("/logs", api.GetLogs)

	return r, store
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := do(r, http.MethodPost, "/login", "", fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func addEmployee(t *testing.T, store *database.Store, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, store.DB.Create(&models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         "employee",
		Email:        username + "@example.com",
	}).Error)
}

func TestRegisterBootstrapsAdminThenLocks(t *testing.T) {
	t.Setenv("ALLOW_REGISTRATION", "")
	r, _ := testRouter(t)

	w := do(r, http.MethodPost, "/register", "", `{"username":"owner","password":"strongpass1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"admin"`)

	w = do(r, http.MethodPost, "/register", "", `{"username":"second","password":"strongpass2"}`)
	assert.Equal(t, http.StatusForbidden, w.Code, "registration closes after bootstrap")
}

func TestRegisterFlagOpensEmployeeSignup(t *testing.T) {
	t.Setenv("ALLOW_REGISTRATION", "true")
	r, _ := testRouter(t)

	w := do(r, http.MethodPost, "/register", "", `{"username":"owner","password":"strongpass1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/register", "", `{"username":"second","password":"strongpass2"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"employee"`)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	t.Setenv("ALLOW_REGISTRATION", "")
	r, _ := testRouter(t)

	w := do(r, http.MethodPost, "/register", "", `{"username":"owner","password":"strongpass1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/login", "", `{"username":"owner","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboardRoleScoping(t *testing.T) {
	t.Setenv("ALLOW_REGISTRATION", "")
	r, store := testRouter(t)

	w := do(r, http.MethodPost, "/register", "", `{"username":"owner","password":"strongpass1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	addEmployee(t, store, "clerk", "strongpass2")

	adminToken := login(t, r, "owner", "strongpass1")
	employeeToken := login(t, r, "clerk", "strongpass2")

	// Admin sees the full overview, cost figures included.
	w = do(r, http.MethodGet, "/api/dashboard", adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "net_profit")
	assert.Contains(t, w.Body.String(), "shipping")

	// Employee payload must not carry any cost field at all.
	w = do(r, http.MethodGet, "/api/dashboard", employeeToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "net_profit")
	assert.NotContains(t, w.Body.String(), "total_cogs")
	assert.NotContains(t, w.Body.String(), "accounts_payable")
	assert.Contains(t, w.Body.String(), "total_revenue")
}

func TestAdminOnlyRoutes(t *testing.T) {
	t.Setenv("ALLOW_REGISTRATION", "")
	r, store := testRouter(t)

	w := do(r, http.MethodPost, "/register", "", `{"username":"owner","password":"strongpass1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	addEmployee(t, store, "clerk", "strongpass2")

	employeeToken := login(t, r, "clerk", "strongpass2")
	w = do(r, http.MethodGet, "/api/logs", employeeToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := login(t, r, "owner", "strongpass1")
	w = do(r, http.MethodGet, "/api/logs", adminToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/dashboard", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "no token, no entry")
}
