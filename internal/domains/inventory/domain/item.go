package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultRestockThreshold applies when an item is created without one.
const DefaultRestockThreshold = 5

// StockLevel buckets an item's stock relative to its restock threshold.
type StockLevel string

const (
	StockLevelOut StockLevel = "out"
	StockLevelLow StockLevel = "low"
	StockLevelOK  StockLevel = "ok"
)

var (
	ErrMissingTenant     = errors.New("item tenant is required")
	ErrEmptyName         = errors.New("item name must not be empty")
	ErrNegativePrice     = errors.New("item price must not be negative")
	ErrNegativeStock     = errors.New("item stock must not be negative")
	ErrNegativeThreshold = errors.New("restock threshold must not be negative")
)

// Item is a sellable stock-keeping unit owned by one tenant. StockQuantity is
// the running total of the item's stock movements and is never written directly.
type Item struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	Name             string
	Category         string
	UnitPrice        decimal.Decimal
	StockQuantity    int
	RestockThreshold int
	SKU              *string
	CreatedBy        uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewItem validates and constructs an item with its opening stock.
func NewItem(tenantID uuid.UUID, name, category string, price decimal.Decimal, openingStock int, restockThreshold *int, sku *string, createdBy uuid.UUID) (*Item, error) {
	item := &Item{
		ID:               uuid.New(),
		TenantID:         tenantID,
		Name:             strings.TrimSpace(name),
		Category:         strings.TrimSpace(category),
		UnitPrice:        price.Round(2),
		StockQuantity:    openingStock,
		RestockThreshold: DefaultRestockThreshold,
		SKU:              normalizeSKU(sku),
		CreatedBy:        createdBy,
	}
	if restockThreshold != nil {
		item.RestockThreshold = *restockThreshold
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate enforces invariants on the aggregate.
func (i *Item) Validate() error {
	if i.TenantID == uuid.Nil {
		return ErrMissingTenant
	}
	if i.Name == "" {
		return ErrEmptyName
	}
	if i.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	if i.StockQuantity < 0 {
		return ErrNegativeStock
	}
	if i.RestockThreshold < 0 {
		return ErrNegativeThreshold
	}
	return nil
}

// Rename updates the display name.
func (i *Item) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	i.Name = name
	return nil
}

// Reprice sets a new unit price. Past sales keep their own snapshot.
func (i *Item) Reprice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	i.UnitPrice = price.Round(2)
	return nil
}

func (i *Item) SetRestockThreshold(threshold int) error {
	if threshold < 0 {
		return ErrNegativeThreshold
	}
	i.RestockThreshold = threshold
	return nil
}

func (i *Item) SetSKU(sku *string) {
	i.SKU = normalizeSKU(sku)
}

func (i *Item) SetCategory(category string) {
	i.Category = strings.TrimSpace(category)
}

// Level reports the stock bucket: out at zero, low at or below the threshold.
func (i *Item) Level() StockLevel {
	switch {
	case i.StockQuantity <= 0:
		return StockLevelOut
	case i.StockQuantity <= i.RestockThreshold:
		return StockLevelLow
	default:
		return StockLevelOK
	}
}

func normalizeSKU(sku *string) *string {
	if sku == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*sku)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
