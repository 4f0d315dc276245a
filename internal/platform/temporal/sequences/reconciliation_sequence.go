package sequences

import (
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	salestypes "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	salesactivities "github.com/Apurer/go-gin-shop-server/internal/platform/temporal/activities/sales"
)

// RunReconciliationSequence checks a tenant's ledgers and records the report.
func RunReconciliationSequence(ctx workflow.Context, tenantID uuid.UUID) (*salestypes.ReconciliationReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("reconciliation sequence started", "tenantId", tenantID)
	reconcileOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	}
	recordOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}

	var report salestypes.ReconciliationReport
	input := salesactivities.ReconcileInput{TenantID: tenantID}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, reconcileOptions), salesactivities.ReconcileActivityName, input).Get(ctx, &report); err != nil {
		logger.Error("reconciliation sequence failed", "tenantId", tenantID, "error", err)
		return nil, err
	}
	if !report.Consistent() {
		logger.Warn("reconciliation sequence found drift", "tenantId", tenantID, "checks", report.FailedChecks())
	}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, recordOptions), salesactivities.RecordReconciliationActivityName, report).Get(ctx, nil); err != nil {
		logger.Error("reconciliation sequence record failed", "tenantId", tenantID, "reportId", report.ID, "error", err)
		return &report, err
	}
	logger.Info("reconciliation sequence recorded", "tenantId", tenantID, "reportId", report.ID)
	return &report, nil
}
