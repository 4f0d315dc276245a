package mapper

import (
	"time"

	"github.com/google/uuid"

	salestypes "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
)

type Finding struct {
	Check      string    `json:"check"`
	EntityType string    `json:"entityType"`
	EntityID   uuid.UUID `json:"entityId"`
	Expected   string    `json:"expected"`
	Actual     string    `json:"actual"`
}

// Reconciliation is the HTTP representation of a ledger health report.
type Reconciliation struct {
	ID               uuid.UUID `json:"id"`
	GeneratedAt      time.Time `json:"generatedAt"`
	Consistent       bool      `json:"consistent"`
	ItemsChecked     int       `json:"itemsChecked"`
	CustomersChecked int       `json:"customersChecked"`
	FailedChecks     []string  `json:"failedChecks"`
	Findings         []Finding `json:"findings"`
}

func FromReport(r *salestypes.ReconciliationReport) Reconciliation {
	if r == nil {
		return Reconciliation{FailedChecks: []string{}, Findings: []Finding{}}
	}
	findings := make([]Finding, 0, len(r.Findings))
	for _, f := range r.Findings {
		findings = append(findings, Finding(f))
	}
	checks := r.FailedChecks()
	if checks == nil {
		checks = []string{}
	}
	return Reconciliation{
		ID:               r.ID,
		GeneratedAt:      r.GeneratedAt,
		Consistent:       r.Consistent(),
		ItemsChecked:     r.ItemsChecked,
		CustomersChecked: r.CustomersChecked,
		FailedChecks:     checks,
		Findings:         findings,
	}
}

func FromReportList(list []*salestypes.ReconciliationReport) []Reconciliation {
	out := make([]Reconciliation, 0, len(list))
	for _, r := range list {
		out = append(out, FromReport(r))
	}
	return out
}
