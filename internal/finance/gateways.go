package finance

import (
	"go-books-agent/internal/database"
	"go-books-agent/internal/models"
)

// GatewayGroup is how gateways are presented for settlement: the card
// brands settle through one processor, so they are shown merged.
type GatewayGroup struct {
	Name string   `json:"name"`
	IDs  []string `json:"ids"`
}

// CardGroupName is the merged Apple Pay / Visa / Mastercard bucket.
// Settlements are recorded against group names, including this one.
const CardGroupName = "Apple Pay / فيزا / ماستركارد"

var cardGroupIDs = map[string]bool{"Apple Pay": true, "فيزا/ماستركارد": true}

// DisplayGateways returns the settlement view of the gateway table:
// the card group first, then every other gateway on its own.
func DisplayGateways() []GatewayGroup {
	groups := []GatewayGroup{{Name: CardGroupName, IDs: []string{"Apple Pay", "فيزا/ماستركارد"}}}
	for _, g := range PaymentGateways {
		if cardGroupIDs[g.ID] {
			continue
		}
		groups = append(groups, GatewayGroup{Name: g.Name, IDs: []string{g.ID}})
	}
	return groups
}

// GatewayReport is the settlement position for one group. Outstanding is
// what the processor still owes us; it is recomputed, never stored.
type GatewayReport struct {
	GatewayGroup
	Revenue     float64 `json:"revenue"`
	Fees        float64 `json:"fees"`
	Settled     float64 `json:"settled"`
	Outstanding float64 `json:"outstanding"`
	OrderCount  int     `json:"order_count"`
}

// OutstandingFor computes (revenue - fees over completed orders in the
// group) minus recorded settlements for the group.
func OutstandingFor(snap database.Snapshot, group GatewayGroup) float64 {
	r := buildReport(snap, group)
	return r.Outstanding
}

// GatewayReports builds the settlement position of every display group.
func GatewayReports(snap database.Snapshot) []GatewayReport {
	groups := DisplayGateways()
	reports := make([]GatewayReport, 0, len(groups))
	for _, g := range groups {
		reports = append(reports, buildReport(snap, g))
	}
	return reports
}

func buildReport(snap database.Snapshot, group GatewayGroup) GatewayReport {
	ids := make(map[string]bool, len(group.IDs))
	for _, id := range group.IDs {
		ids[id] = true
	}

	r := GatewayReport{GatewayGroup: group}
	for _, o := range snap.Orders {
		if o.Status != models.StatusCompleted || !ids[o.PaymentMethod] {
			continue
		}
		r.Revenue += o.OrderTotal
		r.Fees += o.GatewayFee
		r.OrderCount++
	}
	for _, s := range snap.Settlements {
		if s.GatewayID == group.Name {
			r.Settled += s.Amount
		}
	}
	r.Outstanding = (r.Revenue - r.Fees) - r.Settled
	return r
}
