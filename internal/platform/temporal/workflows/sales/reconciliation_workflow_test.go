package sales

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	customermemory "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/memory"
	inventorymemory "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/memory"
	inventorydomain "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
	salesmemory "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/memory"
	salesapp "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application"
	salestypes "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	salesports "github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/memdb"
	salesactivities "github.com/Apurer/go-gin-shop-server/internal/platform/temporal/activities/sales"
)

func newEnv(t *testing.T, svc salesports.Service) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := salesactivities.NewActivities(svc)
	env.RegisterWorkflowWithOptions(ReconciliationWorkflow, workflow.RegisterOptions{Name: ReconciliationWorkflowName})
	env.RegisterActivityWithOptions(acts.Reconcile, activity.RegisterOptions{Name: salesactivities.ReconcileActivityName})
	env.RegisterActivityWithOptions(acts.RecordReconciliation, activity.RegisterOptions{Name: salesactivities.RecordReconciliationActivityName})
	return env
}

func TestReconciliationWorkflow_RecordsReport(t *testing.T) {
	db := memdb.New()
	items := inventorymemory.NewRepository(db)
	uow := salesmemory.NewUnitOfWork(db, items, customermemory.NewRepository(db))
	svc := salesapp.NewService(uow, salesapp.WithReportStore(salesmemory.NewReportStore(db)))
	tenant := uuid.New()
	item, err := inventorydomain.NewItem(tenant, "Soap", "", decimal.NewFromInt(3), 12, nil, nil, uuid.Nil)
	require.NoError(t, err)
	_, err = items.Create(context.Background(), item, uuid.Nil)
	require.NoError(t, err)

	env := newEnv(t, svc)
	env.ExecuteWorkflow(ReconciliationWorkflowName, ReconciliationWorkflowInput{TenantID: tenant, TraceID: "abc"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var report salestypes.ReconciliationReport
	require.NoError(t, env.GetWorkflowResult(&report))
	assert.Equal(t, tenant, report.TenantID)
	assert.Equal(t, 1, report.ItemsChecked)
	assert.True(t, report.Consistent())

	history, err := svc.ListReconciliations(context.Background(), accessdomain.SystemActor(tenant), 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, report.ID, history[0].ID)
}

type deniedService struct {
	salesports.Service
	calls int
}

func (s *deniedService) Reconcile(context.Context, accessdomain.Actor) (*salestypes.ReconciliationReport, error) {
	s.calls++
	return nil, accessdomain.ErrPermissionDenied
}

func TestReconciliationWorkflow_PermissionDeniedIsNotRetried(t *testing.T) {
	svc := &deniedService{}
	env := newEnv(t, svc)
	env.ExecuteWorkflow(ReconciliationWorkflowName, ReconciliationWorkflowInput{TenantID: uuid.New()})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), accessdomain.ErrPermissionDenied.Error())
	assert.Equal(t, 1, svc.calls)
}

type flakyRecorder struct {
	salesports.Service
	failures int
	saved    []uuid.UUID
}

func (s *flakyRecorder) Reconcile(_ context.Context, actor accessdomain.Actor) (*salestypes.ReconciliationReport, error) {
	return &salestypes.ReconciliationReport{ID: uuid.New(), TenantID: actor.TenantID, Findings: []salestypes.Finding{}}, nil
}

func (s *flakyRecorder) RecordReconciliation(_ context.Context, _ accessdomain.Actor, report *salestypes.ReconciliationReport) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("database unavailable")
	}
	s.saved = append(s.saved, report.ID)
	return nil
}

func TestReconciliationWorkflow_RetriesRecording(t *testing.T) {
	svc := &flakyRecorder{failures: 2}
	env := newEnv(t, svc)
	env.ExecuteWorkflow(ReconciliationWorkflowName, ReconciliationWorkflowInput{TenantID: uuid.New()})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Len(t, svc.saved, 1)
}
