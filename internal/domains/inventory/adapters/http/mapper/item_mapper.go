package mapper

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inventorytypes "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
)

// CreateItem is the payload for registering an item.
type CreateItem struct {
	Name             string          `json:"name" binding:"required"`
	Category         string          `json:"category,omitempty"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	StockQuantity    int             `json:"stockQuantity"`
	RestockThreshold *int            `json:"restockThreshold,omitempty"`
	SKU              *string         `json:"sku,omitempty"`
}

// UpdateItem carries descriptive changes. Stock cannot be set here.
type UpdateItem struct {
	Name             *string          `json:"name,omitempty"`
	Category         *string          `json:"category,omitempty"`
	UnitPrice        *decimal.Decimal `json:"unitPrice,omitempty"`
	RestockThreshold *int             `json:"restockThreshold,omitempty"`
	SKU              *string          `json:"sku,omitempty"`
}

// AdjustStock is a signed manual stock change.
type AdjustStock struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

type Item struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Category         string    `json:"category,omitempty"`
	SKU              *string   `json:"sku,omitempty"`
	UnitPrice        string    `json:"unitPrice"`
	StockQuantity    int       `json:"stockQuantity"`
	RestockThreshold int       `json:"restockThreshold"`
	StockLevel       string    `json:"stockLevel"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type Movement struct {
	ID           uuid.UUID  `json:"id"`
	Delta        int        `json:"delta"`
	BalanceAfter int        `json:"balanceAfter"`
	Reason       string     `json:"reason"`
	SaleID       *uuid.UUID `json:"saleId,omitempty"`
	ActorID      uuid.UUID  `json:"actorId"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func ToCreateItemInput(p CreateItem) inventorytypes.CreateItemInput {
	return inventorytypes.CreateItemInput{
		Name:             p.Name,
		Category:         p.Category,
		UnitPrice:        p.UnitPrice,
		OpeningStock:     p.StockQuantity,
		RestockThreshold: p.RestockThreshold,
		SKU:              p.SKU,
	}
}

func ToUpdateItemInput(id uuid.UUID, p UpdateItem) inventorytypes.UpdateItemInput {
	return inventorytypes.UpdateItemInput{
		ID:               id,
		Name:             p.Name,
		Category:         p.Category,
		UnitPrice:        p.UnitPrice,
		RestockThreshold: p.RestockThreshold,
		SKU:              p.SKU,
	}
}

func ToAdjustStockInput(id uuid.UUID, p AdjustStock) inventorytypes.AdjustStockInput {
	return inventorytypes.AdjustStockInput{ItemID: id, Delta: p.Delta, Reason: p.Reason}
}

func FromItem(i *domain.Item) Item {
	if i == nil {
		return Item{}
	}
	return Item{
		ID:               i.ID,
		Name:             i.Name,
		Category:         i.Category,
		SKU:              i.SKU,
		UnitPrice:        i.UnitPrice.StringFixed(2),
		StockQuantity:    i.StockQuantity,
		RestockThreshold: i.RestockThreshold,
		StockLevel:       string(i.Level()),
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
}

func FromItemList(list []*domain.Item) []Item {
	out := make([]Item, 0, len(list))
	for _, i := range list {
		out = append(out, FromItem(i))
	}
	return out
}

func FromMovements(list []*domain.StockMovement) []Movement {
	out := make([]Movement, 0, len(list))
	for _, m := range list {
		out = append(out, FromMovement(m))
	}
	return out
}

func FromMovement(m *domain.StockMovement) Movement {
	if m == nil {
		return Movement{}
	}
	return Movement{
		ID:           m.ID,
		Delta:        m.Delta,
		BalanceAfter: m.BalanceAfter,
		Reason:       string(m.Reason),
		SaleID:       m.SaleID,
		ActorID:      m.ActorID,
		CreatedAt:    m.CreatedAt,
	}
}
