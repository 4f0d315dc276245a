package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	salestypes "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	salesworkflows "github.com/Apurer/go-gin-shop-server/internal/platform/temporal/workflows/sales"
)

var (
	_ ports.ReconciliationRunner = (*TemporalReconciliation)(nil)
	_ ports.ReconciliationRunner = (*InlineReconciliation)(nil)
)

// TemporalReconciliation starts reconciliation workflows on a Temporal cluster.
type TemporalReconciliation struct {
	client    client.Client
	taskQueue string
	now       func() time.Time
}

func NewTemporalReconciliation(c client.Client) *TemporalReconciliation {
	return &TemporalReconciliation{client: c, taskQueue: salesworkflows.ReconciliationTaskQueue, now: time.Now}
}

// RunReconciliation starts the workflow and waits for its report. Runs for the
// same tenant within the same minute share a workflow id, so a concurrent
// request attaches to the run already in flight.
func (o *TemporalReconciliation) RunReconciliation(ctx context.Context, tenantID uuid.UUID) (*salestypes.ReconciliationReport, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal reconciliation not configured")
	}
	workflowID := reconciliationWorkflowID(tenantID, o.now())
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		salesworkflows.ReconciliationWorkflow,
		salesworkflows.ReconciliationWorkflowInput{TenantID: tenantID, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var report salestypes.ReconciliationReport
	if err := run.Get(ctx, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// InlineReconciliation runs reconcile-and-record in process. Used when
// Temporal is disabled and by cmd/reconciler.
type InlineReconciliation struct {
	service ports.Service
}

func NewInlineReconciliation(service ports.Service) *InlineReconciliation {
	return &InlineReconciliation{service: service}
}

func (o *InlineReconciliation) RunReconciliation(ctx context.Context, tenantID uuid.UUID) (*salestypes.ReconciliationReport, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline reconciliation not configured")
	}
	actor := accessdomain.SystemActor(tenantID)
	report, err := o.service.Reconcile(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := o.service.RecordReconciliation(ctx, actor, report); err != nil {
		return report, err
	}
	return report, nil
}

func reconciliationWorkflowID(tenantID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("sales-reconciliation-%s-%s", tenantID, at.UTC().Format("200601021504"))
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
