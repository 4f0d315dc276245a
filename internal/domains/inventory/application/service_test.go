package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/memory"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/ports"
)

func newTestService(t *testing.T) (*Service, accessdomain.Actor) {
	t.Helper()
	repo := memory.NewRepository(nil)
	tick := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	})
	owner := accessdomain.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: accessdomain.RoleOwner}
	return NewService(repo), owner
}

func strPtr(s string) *string { return &s }

func TestCreateItem_BooksOpeningStock(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, owner, types.CreateItemInput{Name: "Rice 5kg", UnitPrice: decimal.NewFromInt(100), OpeningStock: 10})
	require.NoError(t, err)
	require.Equal(t, 10, item.StockQuantity)
	require.Equal(t, domain.DefaultRestockThreshold, item.RestockThreshold)

	movements, err := svc.ListMovements(ctx, owner, item.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, domain.ReasonOpening, movements[0].Reason)
	require.Equal(t, 10, movements[0].BalanceAfter)
}

func TestCreateItem_StaffWithoutAddIsDenied(t *testing.T) {
	svc, owner := newTestService(t)
	staff := accessdomain.Actor{TenantID: owner.TenantID, UserID: uuid.New(), Role: accessdomain.RoleStaff}

	_, err := svc.CreateItem(context.Background(), staff, types.CreateItemInput{Name: "Soap", UnitPrice: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, accessdomain.ErrPermissionDenied)
}

func TestCreateItem_InvalidInput(t *testing.T) {
	svc, owner := newTestService(t)

	_, err := svc.CreateItem(context.Background(), owner, types.CreateItemInput{Name: " ", UnitPrice: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyName)

	_, err = svc.CreateItem(context.Background(), owner, types.CreateItemInput{Name: "Soap", UnitPrice: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, domain.ErrNegativePrice)
}

func TestCreateItem_DuplicateSKUWithinTenant(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, owner, types.CreateItemInput{Name: "Soap", SKU: strPtr("SOAP-1"), UnitPrice: decimal.NewFromInt(5)})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, owner, types.CreateItemInput{Name: "Soap 2", SKU: strPtr("soap-1"), UnitPrice: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, ports.ErrDuplicateSKU)

	other := accessdomain.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: accessdomain.RoleOwner}
	_, err = svc.CreateItem(ctx, other, types.CreateItemInput{Name: "Soap", SKU: strPtr("SOAP-1"), UnitPrice: decimal.NewFromInt(5)})
	require.NoError(t, err)
}

func TestUpdateItem_NeverTouchesStock(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()
	item, err := svc.CreateItem(ctx, owner, types.CreateItemInput{Name: "Tea", UnitPrice: decimal.NewFromInt(3), OpeningStock: 4})
	require.NoError(t, err)

	price := decimal.RequireFromString("3.50")
	updated, err := svc.UpdateItem(ctx, owner, types.UpdateItemInput{ID: item.ID, Name: strPtr("Green tea"), UnitPrice: &price})
	require.NoError(t, err)
	require.Equal(t, "Green tea", updated.Name)
	require.True(t, price.Equal(updated.UnitPrice))
	require.Equal(t, 4, updated.StockQuantity)
}

func TestAdjustStock_GuardsAgainstNegative(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()
	item, err := svc.CreateItem(ctx, owner, types.CreateItemInput{Name: "Milk", UnitPrice: decimal.NewFromInt(2), OpeningStock: 2})
	require.NoError(t, err)

	_, err = svc.AdjustStock(ctx, owner, types.AdjustStockInput{ItemID: item.ID, Delta: -3})
	require.ErrorIs(t, err, ports.ErrInsufficientStock)

	movement, err := svc.AdjustStock(ctx, owner, types.AdjustStockInput{ItemID: item.ID, Delta: 8, Reason: "restock"})
	require.NoError(t, err)
	require.Equal(t, 10, movement.BalanceAfter)

	_, err = svc.AdjustStock(ctx, owner, types.AdjustStockInput{ItemID: item.ID, Delta: 1, Reason: "sale"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListItems_Filters(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()
	threshold := 3
	_, err := svc.CreateItem(ctx, owner, types.CreateItemInput{Name: "Bread", Category: "bakery", UnitPrice: decimal.NewFromInt(2), OpeningStock: 2, RestockThreshold: &threshold})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, owner, types.CreateItemInput{Name: "Cake", Category: "bakery", UnitPrice: decimal.NewFromInt(9), OpeningStock: 0})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, owner, types.CreateItemInput{Name: "Salt", Category: "pantry", SKU: strPtr("PAN-SALT"), UnitPrice: decimal.NewFromInt(1), OpeningStock: 40})
	require.NoError(t, err)

	low, err := svc.ListItems(ctx, owner, types.ListItemsQuery{Stock: "low"})
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "Bread", low[0].Name)

	out, err := svc.ListItems(ctx, owner, types.ListItemsQuery{Stock: "out"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Cake", out[0].Name)

	bySKU, err := svc.ListItems(ctx, owner, types.ListItemsQuery{Search: "pan-"})
	require.NoError(t, err)
	require.Len(t, bySKU, 1)

	bakery, err := svc.ListItems(ctx, owner, types.ListItemsQuery{Category: "Bakery", Sort: "oldest"})
	require.NoError(t, err)
	require.Len(t, bakery, 2)
	require.Equal(t, "Bread", bakery[0].Name)

	recent, err := svc.ListItems(ctx, owner, types.ListItemsQuery{})
	require.NoError(t, err)
	require.Equal(t, "Salt", recent[0].Name)

	_, err = svc.ListItems(ctx, owner, types.ListItemsQuery{Sort: "price"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetItem_IsTenantScoped(t *testing.T) {
	svc, owner := newTestService(t)
	ctx := context.Background()
	item, err := svc.CreateItem(ctx, owner, types.CreateItemInput{Name: "Oil", UnitPrice: decimal.NewFromInt(7)})
	require.NoError(t, err)

	stranger := accessdomain.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: accessdomain.RoleOwner}
	_, err = svc.GetItem(ctx, stranger, item.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.ErrorIs(t, svc.DeleteItem(ctx, stranger, item.ID), ports.ErrNotFound)
	require.NoError(t, svc.DeleteItem(ctx, owner, item.ID))
}
