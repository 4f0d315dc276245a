package sales

import (
	"github.com/google/uuid"
	"go.temporal.io/sdk/workflow"

	salestypes "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/platform/temporal/sequences"
)

const (
	// ReconciliationWorkflowName is the registered workflow type.
	ReconciliationWorkflowName = "sales.workflows.Reconciliation"
	// ReconciliationTaskQueue is consumed by cmd/worker.
	ReconciliationTaskQueue = "SALES_RECONCILIATION"
)

// ReconciliationWorkflowInput selects the tenant to reconcile.
type ReconciliationWorkflowInput struct {
	TenantID uuid.UUID
	TraceID  string
}

// ReconciliationWorkflow checks and records one tenant's ledger health.
func ReconciliationWorkflow(ctx workflow.Context, input ReconciliationWorkflowInput) (*salestypes.ReconciliationReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("ReconciliationWorkflow started", withTraceID(input.TraceID, "tenantId", input.TenantID)...)
	report, err := sequences.RunReconciliationSequence(ctx, input.TenantID)
	if err != nil {
		logger.Error("ReconciliationWorkflow failed", withTraceID(input.TraceID, "tenantId", input.TenantID, "error", err)...)
		return nil, err
	}
	logger.Info("ReconciliationWorkflow completed", withTraceID(input.TraceID, "tenantId", input.TenantID, "consistent", report.Consistent())...)
	return report, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
