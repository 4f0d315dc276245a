package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	customerpostgres "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/persistence/postgres"
	inventorypostgres "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	platformpostgres "github.com/Apurer/go-gin-shop-server/internal/platform/postgres"
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs each sale operation in one PostgreSQL transaction at READ
// COMMITTED. Stock is protected by guarded relative updates and sales by row
// locks, so lost updates are impossible without serializable isolation.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := u.ensureDB(); err != nil {
		return err
	}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, bind(tx))
	})
	return classify(err)
}

// View reads from one REPEATABLE READ snapshot so reconciliation compares
// balances and ledgers as of the same instant.
func (u *UnitOfWork) View(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := u.ensureDB(); err != nil {
		return err
	}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, bind(tx))
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	return classify(err)
}

func (u *UnitOfWork) ensureDB() error {
	if u == nil || u.db == nil {
		return errors.New("postgres sales unit of work not configured")
	}
	return nil
}

func classify(err error) error {
	if err == nil || errors.Is(err, ports.ErrTransactionFailed) {
		return err
	}
	if platformpostgres.IsRetryable(err) {
		return fmt.Errorf("%w: %w", ports.ErrTransactionFailed, err)
	}
	return err
}

type pgTx struct {
	items       *inventorypostgres.Repository
	customers   *customerpostgres.Repository
	sales       *SaleStore
	idempotency *IdempotencyStore
}

func bind(tx *gorm.DB) *pgTx {
	return &pgTx{
		items:       inventorypostgres.NewRepository(tx),
		customers:   customerpostgres.NewRepository(tx),
		sales:       NewSaleStore(tx),
		idempotency: NewIdempotencyStore(tx),
	}
}

func (t *pgTx) Items() ports.ItemStore              { return t.items }
func (t *pgTx) Customers() ports.CustomerStore      { return t.customers }
func (t *pgTx) Sales() ports.SaleStore              { return t.sales }
func (t *pgTx) Idempotency() ports.IdempotencyStore { return t.idempotency }
