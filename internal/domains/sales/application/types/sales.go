package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one requested item. Client-side prices are never accepted.
type CartLine struct {
	ItemID   uuid.UUID
	Quantity int
}

// CreateSaleInput is a checkout request.
type CreateSaleInput struct {
	CustomerID     *uuid.UUID
	WalkInLabel    string
	Lines          []CartLine
	Discount       decimal.Decimal
	PaymentType    string
	IdempotencyKey string
}

// AmendSaleInput patches a committed sale; nil fields keep their current value.
// Lines, when set, replaces the whole cart.
type AmendSaleInput struct {
	Discount    *decimal.Decimal
	PaymentType *string
	Lines       *[]CartLine
}

// IsEmpty reports whether the patch changes nothing.
func (in AmendSaleInput) IsEmpty() bool {
	return in.Discount == nil && in.PaymentType == nil && in.Lines == nil
}

type CancelSaleInput struct {
	Reason string
}

// ListSalesQuery filters sale history. Search matches the walk-in label.
type ListSalesQuery struct {
	Search        string
	Sort          string
	PaymentTypes  []string
	CustomerID    *uuid.UUID
	IncludeVoided bool
	Limit         int
	Offset        int
}
