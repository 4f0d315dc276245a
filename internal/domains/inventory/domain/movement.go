package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MovementReason explains why stock changed.
type MovementReason string

const (
	ReasonOpening      MovementReason = "opening"
	ReasonSale         MovementReason = "sale"
	ReasonSaleReversal MovementReason = "sale_reversal"
	ReasonRestock      MovementReason = "restock"
	ReasonAdjustment   MovementReason = "adjustment"
)

var (
	ErrZeroDelta     = errors.New("stock delta must not be zero")
	ErrInvalidReason = errors.New("stock movement reason is invalid")
)

// StockMovement is one append-only entry of an item's stock ledger.
type StockMovement struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	ItemID       uuid.UUID
	Delta        int
	BalanceAfter int
	Reason       MovementReason
	SaleID       *uuid.UUID
	ActorID      uuid.UUID
	CreatedAt    time.Time
}

// StockAdjustment is a relative stock change. Stores apply it only when the
// resulting quantity stays at or above zero.
type StockAdjustment struct {
	TenantID uuid.UUID
	ItemID   uuid.UUID
	Delta    int
	Reason   MovementReason
	SaleID   *uuid.UUID
	ActorID  uuid.UUID
}

func (a StockAdjustment) Validate() error {
	if a.TenantID == uuid.Nil {
		return ErrMissingTenant
	}
	if a.Delta == 0 {
		return ErrZeroDelta
	}
	switch a.Reason {
	case ReasonOpening, ReasonSale, ReasonSaleReversal, ReasonRestock, ReasonAdjustment:
		return nil
	default:
		return ErrInvalidReason
	}
}

// NewMovement records an adjustment that produced balanceAfter.
func NewMovement(adj StockAdjustment, balanceAfter int, at time.Time) StockMovement {
	return StockMovement{
		ID:           uuid.New(),
		TenantID:     adj.TenantID,
		ItemID:       adj.ItemID,
		Delta:        adj.Delta,
		BalanceAfter: balanceAfter,
		Reason:       adj.Reason,
		SaleID:       adj.SaleID,
		ActorID:      adj.ActorID,
		CreatedAt:    at,
	}
}

// LedgerTotal pairs an item's materialized stock with the sum of its movements.
type LedgerTotal struct {
	ItemID        uuid.UUID
	StockQuantity int
	MovementSum   int
}
