package ports

import (
	"context"

	"github.com/google/uuid"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
)

// Service exposes customer use cases to adapters.
type Service interface {
	CreateCustomer(ctx context.Context, actor accessdomain.Actor, input types.CreateCustomerInput) (*domain.Customer, error)
	GetCustomer(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) (*domain.Customer, error)
	ListCustomers(ctx context.Context, actor accessdomain.Actor, query types.ListCustomersQuery) ([]*domain.Customer, error)
	UpdateCustomer(ctx context.Context, actor accessdomain.Actor, input types.UpdateCustomerInput) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) error
	ListCreditEntries(ctx context.Context, actor accessdomain.Actor, customerID uuid.UUID) ([]*domain.CreditEntry, error)
}
