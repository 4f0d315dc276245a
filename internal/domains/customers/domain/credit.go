package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditReason explains why a balance moved.
type CreditReason string

const (
	ReasonSaleCredit   CreditReason = "sale_credit"
	ReasonSaleReversal CreditReason = "sale_reversal"
)

var (
	ErrZeroCredit          = errors.New("credit delta must not be zero")
	ErrInvalidCreditReason = errors.New("credit entry reason is invalid")
)

// CreditEntry is one append-only entry of a customer's credit ledger.
type CreditEntry struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	CustomerID   uuid.UUID
	Delta        decimal.Decimal
	BalanceAfter decimal.Decimal
	Reason       CreditReason
	SaleID       *uuid.UUID
	ActorID      uuid.UUID
	CreatedAt    time.Time
}

// CreditAdjustment is a relative balance change.
type CreditAdjustment struct {
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	Delta      decimal.Decimal
	Reason     CreditReason
	SaleID     *uuid.UUID
	ActorID    uuid.UUID
}

func (a CreditAdjustment) Validate() error {
	if a.TenantID == uuid.Nil {
		return ErrMissingTenant
	}
	if a.Delta.IsZero() {
		return ErrZeroCredit
	}
	switch a.Reason {
	case ReasonSaleCredit, ReasonSaleReversal:
		return nil
	default:
		return ErrInvalidCreditReason
	}
}

func NewCreditEntry(adj CreditAdjustment, balanceAfter decimal.Decimal, at time.Time) CreditEntry {
	return CreditEntry{
		ID:           uuid.New(),
		TenantID:     adj.TenantID,
		CustomerID:   adj.CustomerID,
		Delta:        adj.Delta,
		BalanceAfter: balanceAfter,
		Reason:       adj.Reason,
		SaleID:       adj.SaleID,
		ActorID:      adj.ActorID,
		CreatedAt:    at,
	}
}

// LedgerTotal pairs a customer's materialized balance with the sum of its entries.
type LedgerTotal struct {
	CustomerID uuid.UUID
	Balance    decimal.Decimal
	EntrySum   decimal.Decimal
}
