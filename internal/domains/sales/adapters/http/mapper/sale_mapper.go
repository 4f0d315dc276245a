package mapper

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	salestypes "github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
)

// CartLine is one requested item in a checkout or amend payload.
type CartLine struct {
	ItemID   uuid.UUID `json:"itemId" binding:"required"`
	Quantity int       `json:"quantity"`
}

// CreateSale is the checkout payload. Prices are resolved server side.
type CreateSale struct {
	CustomerID  *uuid.UUID      `json:"customerId,omitempty"`
	WalkInLabel string          `json:"walkInLabel,omitempty"`
	Items       []CartLine      `json:"items" binding:"dive"`
	Discount    decimal.Decimal `json:"discount"`
	PaymentType string          `json:"paymentType,omitempty"`
}

// AmendSale patches a sale; absent fields are kept.
type AmendSale struct {
	Discount    *decimal.Decimal `json:"discount,omitempty"`
	PaymentType *string          `json:"paymentType,omitempty"`
	Items       *[]CartLine      `json:"items,omitempty" binding:"omitempty,dive"`
}

type CancelSale struct {
	Reason string `json:"reason,omitempty"`
}

// SaleLine is a priced line as stored on the sale.
type SaleLine struct {
	ItemID    uuid.UUID `json:"itemId"`
	ItemName  string    `json:"itemName"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unitPrice"`
	Amount    string    `json:"amount"`
}

// Sale is the HTTP representation of a committed sale. Money is rendered with
// two decimals.
type Sale struct {
	ID          uuid.UUID  `json:"id"`
	CustomerID  *uuid.UUID `json:"customerId,omitempty"`
	WalkInLabel string     `json:"walkInLabel,omitempty"`
	Items       []SaleLine `json:"items"`
	Subtotal    string     `json:"subtotal"`
	Discount    string     `json:"discount"`
	Total       string     `json:"total"`
	PaymentType string     `json:"paymentType"`
	Status      string     `json:"status"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	VoidedAt    *time.Time `json:"voidedAt,omitempty"`
	VoidedBy    *uuid.UUID `json:"voidedBy,omitempty"`
	VoidReason  string     `json:"voidReason,omitempty"`
}

func ToCreateSaleInput(payload CreateSale, idempotencyKey string) salestypes.CreateSaleInput {
	return salestypes.CreateSaleInput{
		CustomerID:     payload.CustomerID,
		WalkInLabel:    payload.WalkInLabel,
		Lines:          toCart(payload.Items),
		Discount:       payload.Discount,
		PaymentType:    payload.PaymentType,
		IdempotencyKey: idempotencyKey,
	}
}

func ToAmendSaleInput(payload AmendSale) salestypes.AmendSaleInput {
	input := salestypes.AmendSaleInput{
		Discount:    payload.Discount,
		PaymentType: payload.PaymentType,
	}
	if payload.Items != nil {
		cart := toCart(*payload.Items)
		input.Lines = &cart
	}
	return input
}

func toCart(lines []CartLine) []salestypes.CartLine {
	cart := make([]salestypes.CartLine, 0, len(lines))
	for _, l := range lines {
		cart = append(cart, salestypes.CartLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return cart
}

func FromSale(s *domain.Sale) Sale {
	if s == nil {
		return Sale{}
	}
	lines := make([]SaleLine, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, SaleLine{
			ItemID:    l.ItemID,
			ItemName:  l.ItemName,
			Quantity:  l.Quantity,
			UnitPrice: Money(l.UnitPriceAtSale),
			Amount:    Money(l.Amount()),
		})
	}
	return Sale{
		ID:          s.ID,
		CustomerID:  s.CustomerID,
		WalkInLabel: s.WalkInLabel,
		Items:       lines,
		Subtotal:    Money(s.Subtotal),
		Discount:    Money(s.Discount),
		Total:       Money(s.Total),
		PaymentType: string(s.PaymentType),
		Status:      string(s.Status),
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		VoidedAt:    s.VoidedAt,
		VoidedBy:    s.VoidedBy,
		VoidReason:  s.VoidReason,
	}
}

func FromSaleList(list []*domain.Sale) []Sale {
	out := make([]Sale, 0, len(list))
	for _, s := range list {
		out = append(out, FromSale(s))
	}
	return out
}

// Money formats an amount with two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
