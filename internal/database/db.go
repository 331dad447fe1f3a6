package database

import (
	"encoding/json"
	"log"
	"time"

	"go-books-agent/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultExpenseCategories seeds the settings row on first boot.
var DefaultExpenseCategories = []string{"إعلانية", "عمالة", "تسمسة", "أخرى"}

// Connect opens the MySQL ledger store and syncs the schema.
// The DSN comes from .env so the app stays portable.
func Connect(dsn string) (*Store, error) {
	var db *gorm.DB
	var err error

	// Wait for the DB to be ready (docker-compose races us on boot)
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, err
	}

	store := NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		return nil, err
	}

	log.Println("✅ Connected to MySQL, schema synced!")
	return store, nil
}

// AutoMigrate syncs every ledger collection and seeds the settings row.
func (s *Store) AutoMigrate() error {
	err := s.DB.AutoMigrate(
		&models.User{},
		&models.Supplier{},
		&models.MasterProduct{},
		&models.Order{},
		&models.OrderProduct{},
		&models.Purchaser{},
		&models.Payment{},
		&models.Expense{},
		&models.Settlement{},
		&models.AuditLog{},
		&models.Setting{},
	)
	if err != nil {
		return err
	}

	// Single settings row, created once with the default category list.
	cats, _ := json.Marshal(DefaultExpenseCategories)
	return s.DB.Where(models.Setting{ID: 1}).
		Attrs(models.Setting{ExpenseCategories: string(cats)}).
		FirstOrCreate(&models.Setting{}).Error
}
