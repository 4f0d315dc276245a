package api

import (
	"context"
	"fmt"

	customermemory "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/memory"
	customerobs "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/observability"
	customerpostgres "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/persistence/postgres"
	customerapp "github.com/Apurer/go-gin-shop-server/internal/domains/customers/application"
	customerports "github.com/Apurer/go-gin-shop-server/internal/domains/customers/ports"
	inventorymemory "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/memory"
	inventoryobs "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/observability"
	inventorypostgres "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/persistence/postgres"
	inventoryapp "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/application"
	inventoryports "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/ports"
	salesmemory "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/memory"
	salesobs "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/observability"
	salespostgres "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/persistence/postgres"
	salesapp "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application"
	salesports "github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/memdb"
	"github.com/Apurer/go-gin-shop-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-shop-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-shop-server/internal/platform/postgres"
)

// Services are the decorated application services of every bounded context.
type Services struct {
	Sales     salesports.Service
	Inventory inventoryports.Service
	Customers customerports.Service
}

// BuildServices wires Postgres-backed services when a DSN is configured and
// in-memory ones when it is empty. A configured database that cannot be
// reached or migrated is an error; sales are never silently kept in memory.
// The returned func releases the connection.
func BuildServices(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Services, func(), error) {
	logger := effectiveLogger(instruments)

	var (
		itemRepo     inventoryports.Repository
		customerRepo customerports.Repository
		uow          salesports.UnitOfWork
		reports      salesports.ReportStore
	)
	db, cleanup, err := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return nil, nil, err
	}
	if db != nil {
		if err := migrations.Run(db.WithContext(ctx)); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate postgres schema: %w", err)
		}
	}
	if db != nil {
		itemRepo = inventorypostgres.NewRepository(db)
		customerRepo = customerpostgres.NewRepository(db)
		uow = salespostgres.NewUnitOfWork(db)
		reports = salespostgres.NewReportStore(db)
		logger.Info("shop stores configured with postgres")
	} else {
		mem := memdb.New()
		items := inventorymemory.NewRepository(mem)
		customers := customermemory.NewRepository(mem)
		itemRepo, customerRepo = items, customers
		uow = salesmemory.NewUnitOfWork(mem, items, customers)
		reports = salesmemory.NewReportStore(mem)
	}

	return &Services{
		Sales: salesobs.New(
			salesapp.NewService(uow, salesapp.WithReportStore(reports)),
			salesobs.WithLogger(logger),
			salesobs.WithTracer(instruments.Tracer("internal.sales.application")),
			salesobs.WithMeter(instruments.Meter("internal.sales.application")),
		),
		Inventory: inventoryobs.New(
			inventoryapp.NewService(itemRepo),
			inventoryobs.WithLogger(logger),
			inventoryobs.WithTracer(instruments.Tracer("internal.inventory.application")),
			inventoryobs.WithMeter(instruments.Meter("internal.inventory.application")),
		),
		Customers: customerobs.New(
			customerapp.NewService(customerRepo),
			customerobs.WithLogger(logger),
			customerobs.WithTracer(instruments.Tracer("internal.customers.application")),
			customerobs.WithMeter(instruments.Meter("internal.customers.application")),
		),
	}, cleanup, nil
}
