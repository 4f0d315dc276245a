//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	customerpostgres "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/persistence/postgres"
	customerdomain "github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
	inventorypostgres "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/persistence/postgres"
	inventorydomain "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/postgres/pgtest"
)

type harness struct {
	svc       *application.Service
	items     *inventorypostgres.Repository
	customers *customerpostgres.Repository
	owner     accessdomain.Actor
}

func newHarness(t *testing.T) *harness {
	db := pgtest.Start(t)
	return &harness{
		svc:       application.NewService(NewUnitOfWork(db), application.WithReportStore(NewReportStore(db))),
		items:     inventorypostgres.NewRepository(db),
		customers: customerpostgres.NewRepository(db),
		owner:     accessdomain.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: accessdomain.RoleOwner},
	}
}

func (h *harness) item(t *testing.T, name string, price int64, stock int) uuid.UUID {
	t.Helper()
	item, err := inventorydomain.NewItem(h.owner.TenantID, name, "", decimal.NewFromInt(price), stock, nil, nil, h.owner.UserID)
	require.NoError(t, err)
	saved, err := h.items.Create(context.Background(), item, h.owner.UserID)
	require.NoError(t, err)
	return saved.ID
}

func (h *harness) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	item, err := h.items.GetByID(context.Background(), h.owner.TenantID, id)
	require.NoError(t, err)
	return item.StockQuantity
}

func TestUnitOfWork_SaleLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rice := h.item(t, "Rice", 100, 10)
	customer, err := customerdomain.NewCustomer(h.owner.TenantID, customerdomain.Contact{Name: "Amina"}, h.owner.UserID)
	require.NoError(t, err)
	buyer, err := h.customers.Create(ctx, customer)
	require.NoError(t, err)

	sale, err := h.svc.CreateSale(ctx, h.owner, types.CreateSaleInput{
		CustomerID:  &buyer.ID,
		PaymentType: "credit",
		Discount:    decimal.NewFromInt(50),
		Lines:       []types.CartLine{{ItemID: rice, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 7, h.stock(t, rice))

	loaded, err := h.svc.GetSale(ctx, h.owner, sale.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, "Rice", loaded.Lines[0].ItemName)

	lines := []types.CartLine{{ItemID: rice, Quantity: 1}}
	amended, err := h.svc.AmendSale(ctx, h.owner, sale.ID, types.AmendSaleInput{Lines: &lines, Discount: &decimal.Zero})
	require.NoError(t, err)
	assert.True(t, amended.Total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 9, h.stock(t, rice))

	_, err = h.svc.CancelSale(ctx, h.owner, sale.ID, types.CancelSaleInput{Reason: "returned"})
	require.NoError(t, err)
	assert.Equal(t, 10, h.stock(t, rice))
	_, err = h.svc.CancelSale(ctx, h.owner, sale.ID, types.CancelSaleInput{})
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	refreshed, err := h.customers.GetByID(ctx, h.owner.TenantID, buyer.ID)
	require.NoError(t, err)
	assert.True(t, refreshed.CreditBalance.IsZero())

	report, err := h.svc.Reconcile(ctx, h.owner)
	require.NoError(t, err)
	assert.True(t, report.Consistent(), "%+v", report.Findings)
	require.NoError(t, h.svc.RecordReconciliation(ctx, h.owner, report))
	history, err := h.svc.ListReconciliations(ctx, h.owner, 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, report.ID, history[0].ID)
}

func TestUnitOfWork_FailedSaleLeavesNoTrace(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rice := h.item(t, "Rice", 100, 10)
	salt := h.item(t, "Salt", 5, 1)

	_, err := h.svc.CreateSale(ctx, h.owner, types.CreateSaleInput{
		Lines: []types.CartLine{{ItemID: rice, Quantity: 2}, {ItemID: salt, Quantity: 2}},
	})
	require.ErrorIs(t, err, ports.ErrInsufficientStock)
	assert.Equal(t, 10, h.stock(t, rice))
	assert.Equal(t, 1, h.stock(t, salt))

	sales, err := h.svc.ListSales(ctx, h.owner, types.ListSalesQuery{IncludeVoided: true})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestUnitOfWork_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	h := newHarness(t)
	rice := h.item(t, "Rice", 100, 1)

	const buyers = 6
	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = h.svc.CreateSale(context.Background(), h.owner, types.CreateSaleInput{Lines: []types.CartLine{{ItemID: rice, Quantity: 1}}})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ports.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, h.stock(t, rice))
}

func TestUnitOfWork_IdempotentCheckout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rice := h.item(t, "Rice", 100, 10)
	input := types.CreateSaleInput{Lines: []types.CartLine{{ItemID: rice, Quantity: 1}}, PaymentType: "online", IdempotencyKey: "till-7-0001"}

	first, err := h.svc.CreateSale(ctx, h.owner, input)
	require.NoError(t, err)
	replay, err := h.svc.CreateSale(ctx, h.owner, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)
	assert.Equal(t, 9, h.stock(t, rice))

	input.PaymentType = "cash"
	_, err = h.svc.CreateSale(ctx, h.owner, input)
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	list, err := h.svc.ListSales(ctx, h.owner, types.ListSalesQuery{PaymentTypes: []string{"online"}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "till-7-0001", list[0].IdempotencyKey)
}

func TestUnitOfWork_SearchTreatsWildcardsLiterally(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rice := h.item(t, "Rice", 1, 10)
	for _, label := range []string{"Table 50% off", "stall a_b", "stall axb", "Walk-in"} {
		_, err := h.svc.CreateSale(ctx, h.owner, types.CreateSaleInput{
			WalkInLabel: label,
			Lines:       []types.CartLine{{ItemID: rice, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	labels := func(search string) []string {
		t.Helper()
		list, err := h.svc.ListSales(ctx, h.owner, types.ListSalesQuery{Search: search})
		require.NoError(t, err)
		var got []string
		for _, sale := range list {
			got = append(got, sale.WalkInLabel)
		}
		return got
	}
	assert.Equal(t, []string{"Table 50% off"}, labels("%"))
	assert.Equal(t, []string{"stall a_b"}, labels("A_B"))
	assert.ElementsMatch(t, []string{"stall a_b", "stall axb"}, labels("STALL"))
	assert.Empty(t, labels(`\`))
}
