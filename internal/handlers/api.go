package handlers

import (
	"errors"
	"net/http"
	"time"

	"go-books-agent/internal/database"
	"go-books-agent/internal/ledger"

	"github.com/gin-gonic/gin"
)

// API holds the injected dependencies every handler needs. No globals:
// main wires one of these and registers its methods on the router.
type API struct {
	Store  *database.Store
	Engine *ledger.Engine
}

func NewAPI(store *database.Store, engine *ledger.Engine) *API {
	return &API{Store: store, Engine: engine}
}

// actor returns the username the auth middleware stored on the context.
func actor(c *gin.Context) string {
	return c.GetString("username")
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("role") == "admin"
}

// fail maps engine errors onto HTTP statuses. Validation messages are
// user-facing (Arabic), so they go out verbatim.
func fail(c *gin.Context, err error) {
	switch {
	case ledger.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// parseDate accepts the date-only form the UI sends, or full RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
