package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemInput captures a new catalogue entry.
type CreateItemInput struct {
	Name             string
	Category         string
	UnitPrice        decimal.Decimal
	OpeningStock     int
	RestockThreshold *int
	SKU              *string
}

// UpdateItemInput is a partial update; nil fields are left untouched.
type UpdateItemInput struct {
	ID               uuid.UUID
	Name             *string
	Category         *string
	UnitPrice        *decimal.Decimal
	RestockThreshold *int
	SKU              *string
}

// AdjustStockInput is a manual stock correction or restock.
type AdjustStockInput struct {
	ItemID uuid.UUID
	Delta  int
	Reason string
}

// ListItemsQuery mirrors the inventory list filters. Stock accepts "low" or "out".
type ListItemsQuery struct {
	Search   string
	Category string
	Stock    string
	Sort     string
	Limit    int
	Offset   int
}
