package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingTenant      = errors.New("customer tenant is required")
	ErrEmptyName          = errors.New("customer name must not be empty")
	ErrInvalidEmail       = errors.New("customer email is invalid")
	ErrOutstandingBalance = errors.New("customer has an outstanding credit balance")
)

// Customer is a named buyer of one tenant. CreditBalance is the running total
// of the customer's credit entries and is never written directly.
type Customer struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Name          string
	Phone         string
	Email         string
	Address       string
	CreditBalance decimal.Decimal
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Contact groups the descriptive fields of a customer.
type Contact struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// NewCustomer validates and constructs a customer with a zero balance.
func NewCustomer(tenantID uuid.UUID, contact Contact, createdBy uuid.UUID) (*Customer, error) {
	c := &Customer{
		ID:            uuid.New(),
		TenantID:      tenantID,
		CreditBalance: decimal.Zero,
		CreatedBy:     createdBy,
	}
	c.applyContact(contact)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Customer) Validate() error {
	if c.TenantID == uuid.Nil {
		return ErrMissingTenant
	}
	if c.Name == "" {
		return ErrEmptyName
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// UpdateContact replaces the descriptive fields. The balance is untouched.
func (c *Customer) UpdateContact(contact Contact) error {
	next := *c
	next.applyContact(contact)
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// EnsureDeletable refuses removal while credit is outstanding.
func (c *Customer) EnsureDeletable() error {
	if !c.CreditBalance.IsZero() {
		return ErrOutstandingBalance
	}
	return nil
}

func (c *Customer) applyContact(contact Contact) {
	c.Name = strings.TrimSpace(contact.Name)
	c.Phone = strings.TrimSpace(contact.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(contact.Email))
	c.Address = strings.TrimSpace(contact.Address)
}
