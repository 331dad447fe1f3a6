package database

import (
	"encoding/json"
	"sync"

	"go-books-agent/internal/models"

	"gorm.io/gorm"
)

// Store wraps the database handle and fans out change notifications.
// It is injected everywhere; nothing in the app touches a global handle.
type Store struct {
	DB *gorm.DB

	mu   sync.Mutex
	subs map[chan Snapshot]struct{}
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		DB:   db,
		subs: make(map[chan Snapshot]struct{}),
	}
}

// Snapshot is one consistent read of every ledger. The financial
// aggregator and the statement generator only ever see this struct,
// so they stay pure and trivially testable.
type Snapshot struct {
	Orders         []models.Order
	Suppliers      []models.Supplier
	MasterProducts []models.MasterProduct
	Purchasers     []models.Purchaser
	Payments       []models.Payment
	Expenses       []models.Expense
	Settlements    []models.Settlement
	Logs           []models.AuditLog
	Users          []models.User
	Settings       models.Setting
}

// ExpenseCategories decodes the settings category list.
func (s Snapshot) ExpenseCategories() []string {
	var cats []string
	if err := json.Unmarshal([]byte(s.Settings.ExpenseCategories), &cats); err != nil || len(cats) == 0 {
		return DefaultExpenseCategories
	}
	return cats
}

// Snapshot loads all collections, newest first where the UI lists them.
func (s *Store) Snapshot() (Snapshot, error) {
	var snap Snapshot

	if err := s.DB.Preload("Products").Order("date desc").Find(&snap.Orders).Error; err != nil {
		return snap, err
	}
	if err := s.DB.Find(&snap.Suppliers).Error; err != nil {
		return snap, err
	}
	if err := s.DB.Find(&snap.MasterProducts).Error; err != nil {
		return snap, err
	}
	if err := s.DB.Find(&snap.Purchasers).Error; err != nil {
		return snap, err
	}
	if err := s.DB.Find(&snap.Payments).Error; err != nil {
		return snap, err
	}
	if err := s.DB.Order("date desc").Find(&snap.Expenses).Error; err != nil {
		return snap, err
	}
	if err := s.DB.Find(&snap.Settlements).Error; err != nil {
		return snap, err
	}
	if err := s.DB.Order("timestamp desc").Find(&snap.Logs).Error; err != nil {
		return snap, err
	}
	if err := s.DB.Find(&snap.Users).Error; err != nil {
		return snap, err
	}
	if err := s.DB.First(&snap.Settings, 1).Error; err != nil && err != gorm.ErrRecordNotFound {
		return snap, err
	}
	return snap, nil
}

// Subscribe returns a stream of full snapshots, one per committed
// mutation. The returned func unsubscribes. Slow consumers miss
// intermediate snapshots instead of blocking writers.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
	return ch, cancel
}

// Notify reloads the snapshot and pushes it to every subscriber.
// The transaction engine calls this after each successful commit.
func (s *Store) Notify() {
	snap, err := s.Snapshot()
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so the fresh one can go in.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
