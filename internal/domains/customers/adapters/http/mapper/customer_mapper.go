package mapper

import (
	"time"

	"github.com/google/uuid"

	customertypes "github.com/Apurer/go-gin-shop-server/internal/domains/customers/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
)

type CreateCustomer struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// UpdateCustomer changes contact details. The credit balance is ledger owned.
type UpdateCustomer struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

type Customer struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	CreditBalance string    `json:"creditBalance"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type CreditEntry struct {
	ID           uuid.UUID  `json:"id"`
	Delta        string     `json:"delta"`
	BalanceAfter string     `json:"balanceAfter"`
	Reason       string     `json:"reason"`
	SaleID       *uuid.UUID `json:"saleId,omitempty"`
	ActorID      uuid.UUID  `json:"actorId"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func ToCreateCustomerInput(p CreateCustomer) customertypes.CreateCustomerInput {
	return customertypes.CreateCustomerInput{Name: p.Name, Phone: p.Phone, Email: p.Email, Address: p.Address}
}

func ToUpdateCustomerInput(id uuid.UUID, p UpdateCustomer) customertypes.UpdateCustomerInput {
	return customertypes.UpdateCustomerInput{ID: id, Name: p.Name, Phone: p.Phone, Email: p.Email, Address: p.Address}
}

func FromCustomer(c *domain.Customer) Customer {
	if c == nil {
		return Customer{}
	}
	return Customer{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		CreditBalance: c.CreditBalance.StringFixed(2),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func FromCustomerList(list []*domain.Customer) []Customer {
	out := make([]Customer, 0, len(list))
	for _, c := range list {
		out = append(out, FromCustomer(c))
	}
	return out
}

func FromCreditEntries(list []*domain.CreditEntry) []CreditEntry {
	out := make([]CreditEntry, 0, len(list))
	for _, e := range list {
		out = append(out, CreditEntry{
			ID:           e.ID,
			Delta:        e.Delta.StringFixed(2),
			BalanceAfter: e.BalanceAfter.StringFixed(2),
			Reason:       string(e.Reason),
			SaleID:       e.SaleID,
			ActorID:      e.ActorID,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out
}
