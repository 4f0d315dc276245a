package memory

import (
	"context"

	customermemory "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/memory"
	inventorymemory "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/memory"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/memdb"
)

var (
	_ ports.UnitOfWork = (*UnitOfWork)(nil)
	_ ports.Tx         = (*UnitOfWork)(nil)
)

// UnitOfWork spans the item, customer, sale and idempotency tables of one memdb.
// Writers are serialized, so concurrent checkouts against the same stock are
// applied one after the other.
type UnitOfWork struct {
	db          *memdb.DB
	items       *inventorymemory.Repository
	customers   *customermemory.Repository
	sales       *SaleStore
	idempotency *IdempotencyStore
}

// NewUnitOfWork binds the repositories, which must share db.
func NewUnitOfWork(db *memdb.DB, items *inventorymemory.Repository, customers *customermemory.Repository) *UnitOfWork {
	return &UnitOfWork{
		db:          db,
		items:       items,
		customers:   customers,
		sales:       NewSaleStore(db),
		idempotency: NewIdempotencyStore(db),
	}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	return u.db.Update(ctx, func(ctx context.Context) error {
		return fn(ctx, u)
	})
}

func (u *UnitOfWork) View(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	return u.db.View(ctx, func(ctx context.Context) error {
		return fn(ctx, u)
	})
}

func (u *UnitOfWork) Items() ports.ItemStore              { return u.items }
func (u *UnitOfWork) Customers() ports.CustomerStore      { return u.customers }
func (u *UnitOfWork) Sales() ports.SaleStore              { return u.sales }
func (u *UnitOfWork) Idempotency() ports.IdempotencyStore { return u.idempotency }
