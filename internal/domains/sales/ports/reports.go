package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
)

// ReportStore keeps the history of reconciliation runs.
type ReportStore interface {
	Save(ctx context.Context, report *types.ReconciliationReport) error
	// List returns the tenant's most recent reports first.
	List(ctx context.Context, tenantID uuid.UUID, limit int) ([]*types.ReconciliationReport, error)
}

// ReconciliationRunner executes a reconcile-and-record run, durably when a
// workflow engine is available.
type ReconciliationRunner interface {
	RunReconciliation(ctx context.Context, tenantID uuid.UUID) (*types.ReconciliationReport, error)
}
