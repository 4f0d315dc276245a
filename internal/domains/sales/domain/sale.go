package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultWalkInLabel names a sale recorded without a customer.
const DefaultWalkInLabel = "Walk-in"

// PaymentType enumerates accepted tenders.
type PaymentType string

const (
	PaymentCash   PaymentType = "cash"
	PaymentCredit PaymentType = "credit"
	PaymentOnline PaymentType = "online"
)

// Status tracks whether a sale still has effect.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusVoided    Status = "voided"
)

var (
	ErrMissingTenant      = errors.New("sale tenant is required")
	ErrEmptyCart          = errors.New("sale must contain at least one line")
	ErrInvalidQuantity    = errors.New("line quantity must be greater than zero")
	ErrNegativePrice      = errors.New("line price must not be negative")
	ErrInvalidDiscount    = errors.New("discount must be whole cents between zero and the subtotal")
	ErrInvalidPaymentType = errors.New("payment type is invalid")
	ErrAlreadyCancelled   = errors.New("sale is already cancelled")
)

// Line is an immutable snapshot of one sold item.
type Line struct {
	ItemID          uuid.UUID
	ItemName        string
	Quantity        int
	UnitPriceAtSale decimal.Decimal
}

// Amount is quantity times the snapshot price.
func (l Line) Amount() decimal.Decimal {
	return l.UnitPriceAtSale.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Sale is the committed record of a checkout.
type Sale struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	CreatedBy      uuid.UUID
	CustomerID     *uuid.UUID
	WalkInLabel    string
	Lines          []Line
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
	PaymentType    PaymentType
	Status         Status
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	VoidedAt       *time.Time
	VoidedBy       *uuid.UUID
	VoidReason     string
}

// Draft carries the caller-controlled parts of a new sale.
type Draft struct {
	TenantID       uuid.UUID
	CreatedBy      uuid.UUID
	CustomerID     *uuid.UUID
	WalkInLabel    string
	Lines          []Line
	Discount       decimal.Decimal
	PaymentType    PaymentType
	IdempotencyKey string
}

// NewSale prices the draft and validates every invariant.
func NewSale(d Draft, at time.Time) (*Sale, error) {
	s := &Sale{
		ID:             uuid.New(),
		TenantID:       d.TenantID,
		CreatedBy:      d.CreatedBy,
		CustomerID:     d.CustomerID,
		Status:         StatusCompleted,
		IdempotencyKey: strings.TrimSpace(d.IdempotencyKey),
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	if s.TenantID == uuid.Nil {
		return nil, ErrMissingTenant
	}
	if s.CustomerID == nil {
		s.WalkInLabel = strings.TrimSpace(d.WalkInLabel)
		if s.WalkInLabel == "" {
			s.WalkInLabel = DefaultWalkInLabel
		}
	}
	if err := s.price(d.Lines, d.Discount, d.PaymentType); err != nil {
		return nil, err
	}
	return s, nil
}

// Reprice replaces lines, discount and tender of a completed sale.
func (s *Sale) Reprice(lines []Line, discount decimal.Decimal, paymentType PaymentType, at time.Time) error {
	if s.Status == StatusVoided {
		return ErrAlreadyCancelled
	}
	next := *s
	if err := next.price(lines, discount, paymentType); err != nil {
		return err
	}
	next.UpdatedAt = at
	*s = next
	return nil
}

// Void marks the sale cancelled. The record is kept for audit.
func (s *Sale) Void(by uuid.UUID, reason string, at time.Time) error {
	if s.Status == StatusVoided {
		return ErrAlreadyCancelled
	}
	s.Status = StatusVoided
	s.VoidedAt = &at
	s.VoidedBy = &by
	s.VoidReason = strings.TrimSpace(reason)
	s.UpdatedAt = at
	return nil
}

// CreditAmount is what the sale adds to the customer's balance: the total of a
// credit sale attributed to a customer, zero otherwise.
func (s *Sale) CreditAmount() decimal.Decimal {
	if s.PaymentType != PaymentCredit || s.CustomerID == nil || s.Status != StatusCompleted {
		return decimal.Zero
	}
	return s.Total
}

// Validate re-checks the priced state, e.g. after loading from storage.
func (s *Sale) Validate() error {
	if s.TenantID == uuid.Nil {
		return ErrMissingTenant
	}
	if len(s.Lines) == 0 {
		return ErrEmptyCart
	}
	subtotal := decimal.Zero
	for _, line := range s.Lines {
		if err := line.validate(); err != nil {
			return err
		}
		subtotal = subtotal.Add(line.Amount())
	}
	if s.Discount.IsNegative() || !s.Discount.Equal(s.Discount.Round(2)) || s.Discount.GreaterThan(subtotal) {
		return ErrInvalidDiscount
	}
	if !ValidPaymentType(s.PaymentType) {
		return ErrInvalidPaymentType
	}
	return nil
}

// Clone returns a deep copy.
func (s *Sale) Clone() *Sale {
	clone := *s
	clone.Lines = append([]Line(nil), s.Lines...)
	if s.CustomerID != nil {
		id := *s.CustomerID
		clone.CustomerID = &id
	}
	if s.VoidedAt != nil {
		at := *s.VoidedAt
		clone.VoidedAt = &at
	}
	if s.VoidedBy != nil {
		by := *s.VoidedBy
		clone.VoidedBy = &by
	}
	return &clone
}

func (s *Sale) price(lines []Line, discount decimal.Decimal, paymentType PaymentType) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	if paymentType == "" {
		paymentType = PaymentCash
	}
	if !ValidPaymentType(paymentType) {
		return ErrInvalidPaymentType
	}
	subtotal := decimal.Zero
	for _, line := range lines {
		if err := line.validate(); err != nil {
			return err
		}
		subtotal = subtotal.Add(line.Amount())
	}
	// Sub-cent discounts are rejected, not rounded into range.
	if discount.IsNegative() || !discount.Equal(discount.Round(2)) || discount.GreaterThan(subtotal) {
		return ErrInvalidDiscount
	}
	s.Lines = append([]Line(nil), lines...)
	s.Subtotal = subtotal
	s.Discount = discount
	s.Total = subtotal.Sub(discount)
	s.PaymentType = paymentType
	return nil
}

func (l Line) validate() error {
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if l.UnitPriceAtSale.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// ValidPaymentType reports whether p is a known tender.
func ValidPaymentType(p PaymentType) bool {
	switch p {
	case PaymentCash, PaymentCredit, PaymentOnline:
		return true
	default:
		return false
	}
}
