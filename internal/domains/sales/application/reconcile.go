package application

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
)

// Reconcile compares every stored balance with the ledger it is derived from:
// item stock against stock movements, customer credit against credit entries
// and against outstanding credit sales.
func (s *Service) Reconcile(ctx context.Context, actor accessdomain.Actor) (*types.ReconciliationReport, error) {
	if err := actor.Authorize(accessdomain.CapabilityRead); err != nil {
		return nil, err
	}
	report := &types.ReconciliationReport{
		ID:          uuid.New(),
		TenantID:    actor.TenantID,
		GeneratedAt: s.now().UTC(),
		Findings:    []types.Finding{},
	}
	err := s.uow.View(ctx, func(ctx context.Context, tx ports.Tx) error {
		stock, err := tx.Items().LedgerTotals(ctx, actor.TenantID)
		if err != nil {
			return err
		}
		for _, total := range stock {
			report.ItemsChecked++
			if total.StockQuantity != total.MovementSum {
				report.Findings = append(report.Findings, types.Finding{
					Check:      types.CheckStockLedger,
					EntityType: "item",
					EntityID:   total.ItemID,
					Expected:   strconv.Itoa(total.MovementSum),
					Actual:     strconv.Itoa(total.StockQuantity),
				})
			}
		}

		credit, err := tx.Customers().LedgerTotals(ctx, actor.TenantID)
		if err != nil {
			return err
		}
		outstanding, err := tx.Sales().CreditTotals(ctx, actor.TenantID)
		if err != nil {
			return err
		}
		for _, total := range credit {
			report.CustomersChecked++
			if !total.Balance.Equal(total.EntrySum) {
				report.Findings = append(report.Findings, types.Finding{
					Check:      types.CheckCreditLedger,
					EntityType: "customer",
					EntityID:   total.CustomerID,
					Expected:   total.EntrySum.StringFixed(2),
					Actual:     total.Balance.StringFixed(2),
				})
			}
			expected, ok := outstanding[total.CustomerID]
			if !ok {
				expected = decimal.Zero
			}
			if !total.Balance.Equal(expected) {
				report.Findings = append(report.Findings, types.Finding{
					Check:      types.CheckCreditSales,
					EntityType: "customer",
					EntityID:   total.CustomerID,
					Expected:   expected.StringFixed(2),
					Actual:     total.Balance.StringFixed(2),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

var errReportsDisabled = errors.New("reconciliation report store not configured")

// RecordReconciliation stores a report produced for the actor's tenant.
func (s *Service) RecordReconciliation(ctx context.Context, actor accessdomain.Actor, report *types.ReconciliationReport) error {
	if err := actor.Authorize(accessdomain.CapabilityEdit); err != nil {
		return err
	}
	if s.reports == nil {
		return errReportsDisabled
	}
	if report == nil {
		return invalidInput("report is required")
	}
	if report.TenantID != actor.TenantID {
		return ErrPermissionDenied
	}
	if report.Findings == nil {
		report.Findings = []types.Finding{}
	}
	return s.reports.Save(ctx, report)
}

// ListReconciliations returns recent reports, newest first.
func (s *Service) ListReconciliations(ctx context.Context, actor accessdomain.Actor, limit int) ([]*types.ReconciliationReport, error) {
	if err := actor.Authorize(accessdomain.CapabilityRead); err != nil {
		return nil, err
	}
	if s.reports == nil {
		return nil, errReportsDisabled
	}
	limit, _, err := page(limit, 0)
	if err != nil {
		return nil, err
	}
	return s.reports.List(ctx, actor.TenantID, limit)
}
