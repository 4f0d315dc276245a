package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
)

var ErrNotFound = errors.New("customer not found")

// CustomerFilter narrows a customer listing within one tenant.
type CustomerFilter struct {
	TenantID    uuid.UUID
	Search      string
	OldestFirst bool
	Limit       int
	Offset      int
}

// Repository persists customers and their credit ledger, scoped by tenant.
type Repository interface {
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	// Update writes contact fields only; the balance is owned by AdjustCredit.
	Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]*domain.Customer, error)
	// Delete removes the customer unless its balance is non-zero at delete time.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	AdjustCredit(ctx context.Context, adj domain.CreditAdjustment) (*domain.CreditEntry, error)
	ListCreditEntries(ctx context.Context, tenantID, customerID uuid.UUID) ([]*domain.CreditEntry, error)
	LedgerTotals(ctx context.Context, tenantID uuid.UUID) ([]domain.LedgerTotal, error)
}
