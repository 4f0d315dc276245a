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

	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/postgres/pgtest"
)

func newItem(t *testing.T, tenantID uuid.UUID, name string, stock int, sku *string) *domain.Item {
	t.Helper()
	item, err := domain.NewItem(tenantID, name, "grocery", decimal.NewFromInt(100), stock, nil, sku, uuid.New())
	require.NoError(t, err)
	return item
}

func TestRepository_CreateBooksOpeningMovement(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()
	tenantID := uuid.New()

	saved, err := repo.Create(ctx, newItem(t, tenantID, "Rice", 10, nil), uuid.New())
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, tenantID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, fetched.StockQuantity)
	assert.True(t, fetched.UnitPrice.Equal(decimal.NewFromInt(100)))

	movements, err := repo.ListMovements(ctx, tenantID, saved.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, domain.ReasonOpening, movements[0].Reason)

	_, err = repo.GetByID(ctx, uuid.New(), saved.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_SKUUniquePerTenant(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()
	tenantID := uuid.New()
	sku := "RICE-5"
	lower := "rice-5"

	_, err := repo.Create(ctx, newItem(t, tenantID, "Rice", 1, &sku), uuid.New())
	require.NoError(t, err)
	_, err = repo.Create(ctx, newItem(t, tenantID, "Rice again", 1, &lower), uuid.New())
	assert.ErrorIs(t, err, ports.ErrDuplicateSKU)
	_, err = repo.Create(ctx, newItem(t, uuid.New(), "Rice", 1, &sku), uuid.New())
	assert.NoError(t, err)
}

func TestRepository_AdjustStockGuard(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()
	tenantID := uuid.New()
	item, err := repo.Create(ctx, newItem(t, tenantID, "Rice", 2, nil), uuid.New())
	require.NoError(t, err)

	movement, err := repo.AdjustStock(ctx, domain.StockAdjustment{TenantID: tenantID, ItemID: item.ID, Delta: -2, Reason: domain.ReasonSale, ActorID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 0, movement.BalanceAfter)

	_, err = repo.AdjustStock(ctx, domain.StockAdjustment{TenantID: tenantID, ItemID: item.ID, Delta: -1, Reason: domain.ReasonSale, ActorID: uuid.New()})
	assert.ErrorIs(t, err, ports.ErrInsufficientStock)

	_, err = repo.AdjustStock(ctx, domain.StockAdjustment{TenantID: tenantID, ItemID: uuid.New(), Delta: 1, Reason: domain.ReasonRestock, ActorID: uuid.New()})
	assert.ErrorIs(t, err, ports.ErrNotFound)

	totals, err := repo.LedgerTotals(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, totals[0].StockQuantity, totals[0].MovementSum)
}

func TestRepository_ConcurrentDecrementsNeverOversell(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()
	tenantID := uuid.New()
	item, err := repo.Create(ctx, newItem(t, tenantID, "Rice", 1, nil), uuid.New())
	require.NoError(t, err)

	const buyers = 6
	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = repo.AdjustStock(ctx, domain.StockAdjustment{TenantID: tenantID, ItemID: item.ID, Delta: -1, Reason: domain.ReasonSale, ActorID: uuid.New()})
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
	fetched, err := repo.GetByID(ctx, tenantID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fetched.StockQuantity)
}

func TestRepository_ListFilters(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()
	tenantID := uuid.New()
	for _, spec := range []struct {
		name  string
		stock int
	}{{"Rice", 0}, {"Salt", 3}, {"Sugar", 40}} {
		_, err := repo.Create(ctx, newItem(t, tenantID, spec.name, spec.stock, nil), uuid.New())
		require.NoError(t, err)
	}

	low := domain.StockLevelLow
	list, err := repo.List(ctx, ports.ItemFilter{TenantID: tenantID, Level: &low})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Salt", list[0].Name)

	out := domain.StockLevelOut
	list, err = repo.List(ctx, ports.ItemFilter{TenantID: tenantID, Level: &out})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Rice", list[0].Name)

	list, err = repo.List(ctx, ports.ItemFilter{TenantID: tenantID, Search: "su"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sugar", list[0].Name)
}
