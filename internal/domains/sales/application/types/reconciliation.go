package types

import (
	"time"

	"github.com/google/uuid"
)

// Ledger checks performed by reconciliation.
const (
	CheckStockLedger  = "stock_vs_movements"
	CheckCreditLedger = "balance_vs_credit_entries"
	CheckCreditSales  = "balance_vs_credit_sales"
)

// Finding is one detected drift between a balance and its source of truth.
type Finding struct {
	Check      string    `json:"check"`
	EntityType string    `json:"entityType"`
	EntityID   uuid.UUID `json:"entityId"`
	Expected   string    `json:"expected"`
	Actual     string    `json:"actual"`
}

// ReconciliationReport summarises one tenant's ledger health.
type ReconciliationReport struct {
	ID               uuid.UUID `json:"id"`
	TenantID         uuid.UUID `json:"tenantId"`
	GeneratedAt      time.Time `json:"generatedAt"`
	ItemsChecked     int       `json:"itemsChecked"`
	CustomersChecked int       `json:"customersChecked"`
	Findings         []Finding `json:"findings"`
}

// Consistent reports whether no drift was found.
func (r *ReconciliationReport) Consistent() bool {
	return r != nil && len(r.Findings) == 0
}

// FailedChecks lists the distinct checks that produced findings, in report order.
func (r *ReconciliationReport) FailedChecks() []string {
	if r == nil {
		return nil
	}
	var checks []string
	seen := map[string]bool{}
	for _, f := range r.Findings {
		if !seen[f.Check] {
			seen[f.Check] = true
			checks = append(checks, f.Check)
		}
	}
	return checks
}
