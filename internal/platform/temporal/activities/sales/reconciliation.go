package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	salestypes "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	salesports "github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
)

const (
	// ReconcileActivityName compares one tenant's balances with their ledgers.
	ReconcileActivityName = "sales.activities.Reconcile"
	// RecordReconciliationActivityName stores a finished report.
	RecordReconciliationActivityName = "sales.activities.RecordReconciliation"
)

// ReconcileInput names the tenant to check.
type ReconcileInput struct {
	TenantID uuid.UUID
}

// Activities groups the reconciliation activities of the sales context.
type Activities struct {
	service salesports.Service
}

func NewActivities(service salesports.Service) *Activities {
	return &Activities{service: service}
}

// Reconcile runs the ledger checks as the tenant's system actor.
func (a *Activities) Reconcile(ctx context.Context, input ReconcileInput) (*salestypes.ReconciliationReport, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("reconcile activity not initialized", "tenantId", input.TenantID)
		return nil, errors.New("reconcile activity not initialized")
	}
	logger.Info("Reconcile activity started", "tenantId", input.TenantID)
	report, err := a.service.Reconcile(ctx, accessdomain.SystemActor(input.TenantID))
	if err != nil {
		logger.Error("Reconcile activity failed", "tenantId", input.TenantID, "error", err)
		if errors.Is(err, accessdomain.ErrPermissionDenied) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "PermissionDenied", err)
		}
		return nil, err
	}
	logger.Info("Reconcile activity completed", "tenantId", input.TenantID, "findings", len(report.Findings))
	return report, nil
}

// RecordReconciliation persists the report produced by Reconcile. Stores
// ignore a second save of the same report id, so retries are safe.
func (a *Activities) RecordReconciliation(ctx context.Context, report salestypes.ReconciliationReport) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("record activity not initialized", "reportId", report.ID)
		return errors.New("record reconciliation activity not initialized")
	}
	if err := a.service.RecordReconciliation(ctx, accessdomain.SystemActor(report.TenantID), &report); err != nil {
		logger.Error("RecordReconciliation activity failed", "reportId", report.ID, "error", err)
		return err
	}
	logger.Info("RecordReconciliation activity completed", "reportId", report.ID, "tenantId", report.TenantID)
	return nil
}
