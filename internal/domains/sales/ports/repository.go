package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customerdomain "github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
	customerports "github.com/Apurer/go-gin-shop-server/internal/domains/customers/ports"
	inventorydomain "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
	inventoryports "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/ports"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
)

var (
	ErrSaleNotFound = errors.New("sale not found")
	// ErrTransactionFailed marks a unit of work that lost a concurrency race
	// or hit a storage conflict. The whole operation may be retried.
	ErrTransactionFailed = errors.New("storage transaction failed")

	ErrItemNotFound      = inventoryports.ErrNotFound
	ErrInsufficientStock = inventoryports.ErrInsufficientStock
	ErrCustomerNotFound  = customerports.ErrNotFound
)

// ItemStore is the slice of the inventory store the sale engine needs.
type ItemStore interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*inventorydomain.Item, error)
	AdjustStock(ctx context.Context, adj inventorydomain.StockAdjustment) (*inventorydomain.StockMovement, error)
	LedgerTotals(ctx context.Context, tenantID uuid.UUID) ([]inventorydomain.LedgerTotal, error)
}

// CustomerStore is the slice of the customer store the sale engine needs.
type CustomerStore interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*customerdomain.Customer, error)
	AdjustCredit(ctx context.Context, adj customerdomain.CreditAdjustment) (*customerdomain.CreditEntry, error)
	LedgerTotals(ctx context.Context, tenantID uuid.UUID) ([]customerdomain.LedgerTotal, error)
}

// SaleFilter narrows a sale listing within one tenant.
type SaleFilter struct {
	TenantID      uuid.UUID
	Search        string
	OldestFirst   bool
	PaymentTypes  []domain.PaymentType
	CustomerID    *uuid.UUID
	IncludeVoided bool
	Limit         int
	Offset        int
}

// SaleStore persists sales with their lines.
type SaleStore interface {
	Insert(ctx context.Context, sale *domain.Sale) error
	Update(ctx context.Context, sale *domain.Sale) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Sale, error)
	// GetForUpdate loads the sale and holds it against concurrent amend or cancel
	// until the surrounding unit of work ends.
	GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]*domain.Sale, error)
	// CreditTotals sums the totals of completed credit sales per customer.
	CreditTotals(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

// Tx exposes the stores bound to one unit of work.
type Tx interface {
	Items() ItemStore
	Customers() CustomerStore
	Sales() SaleStore
	Idempotency() IdempotencyStore
}

// UnitOfWork is the transaction boundary of the sale engine. Do commits only
// when fn returns nil; any error aborts every write made through tx.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// View runs fn against a consistent read-only snapshot.
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
