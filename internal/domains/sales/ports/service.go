package ports

import (
	"context"

	"github.com/google/uuid"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
)

// Service exposes the sale-transaction engine to adapters.
type Service interface {
	CreateSale(ctx context.Context, actor accessdomain.Actor, input types.CreateSaleInput) (*domain.Sale, error)
	GetSale(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) (*domain.Sale, error)
	ListSales(ctx context.Context, actor accessdomain.Actor, query types.ListSalesQuery) ([]*domain.Sale, error)
	AmendSale(ctx context.Context, actor accessdomain.Actor, id uuid.UUID, input types.AmendSaleInput) (*domain.Sale, error)
	CancelSale(ctx context.Context, actor accessdomain.Actor, id uuid.UUID, input types.CancelSaleInput) (*domain.Sale, error)
	Reconcile(ctx context.Context, actor accessdomain.Actor) (*types.ReconciliationReport, error)
	RecordReconciliation(ctx context.Context, actor accessdomain.Actor, report *types.ReconciliationReport) error
	ListReconciliations(ctx context.Context, actor accessdomain.Actor, limit int) ([]*types.ReconciliationReport, error)
}
