package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
)

var (
	ErrNotFound          = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateSKU      = errors.New("sku already used by another item")
)

// SortOrder orders listings by creation time.
type SortOrder string

const (
	SortRecent SortOrder = "recent"
	SortOldest SortOrder = "oldest"
)

// ItemFilter narrows an item listing within one tenant.
type ItemFilter struct {
	TenantID uuid.UUID
	Search   string
	Category string
	Level    *domain.StockLevel
	Sort     SortOrder
	Limit    int
	Offset   int
}

// Repository persists items and their stock ledger. Every method is scoped to
// a tenant; rows of other tenants behave as missing.
type Repository interface {
	// Create stores the item and records its opening stock as a movement.
	Create(ctx context.Context, item *domain.Item, actorID uuid.UUID) (*domain.Item, error)
	// Update writes descriptive fields and price. Stock is never overwritten.
	Update(ctx context.Context, item *domain.Item) (*domain.Item, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]*domain.Item, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// AdjustStock applies a relative change guarded by "result >= 0" and appends
	// the movement. It returns ErrInsufficientStock when the guard fails.
	AdjustStock(ctx context.Context, adj domain.StockAdjustment) (*domain.StockMovement, error)
	ListMovements(ctx context.Context, tenantID, itemID uuid.UUID) ([]*domain.StockMovement, error)
	LedgerTotals(ctx context.Context, tenantID uuid.UUID) ([]domain.LedgerTotal, error)
}
