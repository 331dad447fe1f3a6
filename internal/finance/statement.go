package finance

import (
	"fmt"
	"sort"
	"time"

	"go-books-agent/internal/database"
	"go-books-agent/internal/models"
)

// StatementEntry is one movement on a supplier's account, with the
// running balance after the movement was applied.
type StatementEntry struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Debit       float64   `json:"debit"`
	Credit      float64   `json:"credit"`
	Balance     float64   `json:"balance"`
}

// Statement is the audited supplier ledger over a date range. It is
// format-agnostic: the CSV and XLSX renderers both consume this as-is.
type Statement struct {
	SupplierID     uint             `json:"supplier_id"`
	SupplierName   string           `json:"supplier_name"`
	Start          time.Time        `json:"start"`
	End            time.Time        `json:"end"`
	OpeningBalance float64          `json:"opening_balance"`
	TotalDebits    float64          `json:"total_debits"`
	TotalCredits   float64          `json:"total_credits"`
	ClosingBalance float64          `json:"closing_balance"`
	Entries        []StatementEntry `json:"entries"`
}

// BuildStatement walks the supplier's debits (line costs of completed
// orders) and credits (payments) chronologically across [start, end],
// end-of-day inclusive. The opening balance folds in everything strictly
// before start. Same-day events keep collection order: debits first,
// then credits, under a stable sort.
func BuildStatement(snap database.Snapshot, supplierID uint, start, end time.Time) Statement {
	endOfDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())

	st := Statement{SupplierID: supplierID, Start: start, End: end}
	for _, s := range snap.Suppliers {
		if s.ID == supplierID {
			st.SupplierName = s.Name
			break
		}
	}

	// Snapshots arrive newest-first; re-sort ascending so collection
	// order (and therefore tie order) is deterministic.
	orders := make([]models.Order, len(snap.Orders))
	copy(orders, snap.Orders)
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].Date.Equal(orders[j].Date) {
			return orders[i].Date.Before(orders[j].Date)
		}
		return orders[i].ID < orders[j].ID
	})
	payments := make([]models.Payment, len(snap.Payments))
	copy(payments, snap.Payments)
	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].Date.Equal(payments[j].Date) {
			return payments[i].Date.Before(payments[j].Date)
		}
		return payments[i].ID < payments[j].ID
	})

	var entries []StatementEntry
	for _, o := range orders {
		if o.Status != models.StatusCompleted {
			continue
		}
		for _, p := range o.Products {
			if p.SupplierID != supplierID {
				continue
			}
			switch {
			case o.Date.Before(start):
				st.OpeningBalance += p.Cost
			case !o.Date.After(endOfDay):
				entries = append(entries, StatementEntry{
					Date:        o.Date,
					Description: fmt.Sprintf("تكلفة بضاعة الطلب #%s", o.OrderNumber),
					Debit:       p.Cost,
				})
			}
		}
	}
	for _, p := range payments {
		if p.SupplierID != supplierID {
			continue
		}
		switch {
		case p.Date.Before(start):
			st.OpeningBalance -= p.Amount
		case !p.Date.After(endOfDay):
			entries = append(entries, StatementEntry{
				Date:        p.Date,
				Description: "دفعة سداد",
				Credit:      p.Amount,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	balance := st.OpeningBalance
	for i := range entries {
		balance += entries[i].Debit - entries[i].Credit
		entries[i].Balance = balance
		st.TotalDebits += entries[i].Debit
		st.TotalCredits += entries[i].Credit
	}
	st.ClosingBalance = balance
	st.Entries = entries
	return st
}
