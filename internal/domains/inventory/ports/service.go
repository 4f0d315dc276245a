package ports

import (
	"context"

	"github.com/google/uuid"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
)

// Service exposes inventory use cases to adapters.
type Service interface {
	CreateItem(ctx context.Context, actor accessdomain.Actor, input types.CreateItemInput) (*domain.Item, error)
	GetItem(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) (*domain.Item, error)
	ListItems(ctx context.Context, actor accessdomain.Actor, query types.ListItemsQuery) ([]*domain.Item, error)
	UpdateItem(ctx context.Context, actor accessdomain.Actor, input types.UpdateItemInput) (*domain.Item, error)
	DeleteItem(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) error
	AdjustStock(ctx context.Context, actor accessdomain.Actor, input types.AdjustStockInput) (*domain.StockMovement, error)
	ListMovements(ctx context.Context, actor accessdomain.Actor, itemID uuid.UUID) ([]*domain.StockMovement, error)
}
