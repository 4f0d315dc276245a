package workflows

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	customermemory "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/memory"
	inventorymemory "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/memory"
	salesmemory "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/memory"
	salesapp "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application"
	"github.com/Apurer/go-gin-shop-server/internal/platform/memdb"
)

func TestInlineReconciliation_RecordsReport(t *testing.T) {
	db := memdb.New()
	uow := salesmemory.NewUnitOfWork(db, inventorymemory.NewRepository(db), customermemory.NewRepository(db))
	svc := salesapp.NewService(uow, salesapp.WithReportStore(salesmemory.NewReportStore(db)))
	tenant := uuid.New()

	report, err := NewInlineReconciliation(svc).RunReconciliation(context.Background(), tenant)
	require.NoError(t, err)
	assert.True(t, report.Consistent())

	history, err := svc.ListReconciliations(context.Background(), accessdomain.SystemActor(tenant), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, report.ID, history[0].ID)
}

func TestInlineReconciliation_NotConfigured(t *testing.T) {
	var o *InlineReconciliation
	_, err := o.RunReconciliation(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestReconciliationWorkflowID_StableWithinMinute(t *testing.T) {
	tenant := uuid.New()
	at := time.Date(2024, 5, 1, 10, 30, 5, 0, time.UTC)

	assert.Equal(t, reconciliationWorkflowID(tenant, at), reconciliationWorkflowID(tenant, at.Add(40*time.Second)))
	assert.NotEqual(t, reconciliationWorkflowID(tenant, at), reconciliationWorkflowID(tenant, at.Add(time.Minute)))
	assert.Equal(t, "", workflowTraceID(context.Background()))
}
