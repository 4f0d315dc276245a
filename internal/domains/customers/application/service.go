package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/ports"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Service orchestrates customer use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCustomer(ctx context.Context, actor accessdomain.Actor, input types.CreateCustomerInput) (*domain.Customer, error) {
	if err := actor.Authorize(accessdomain.CapabilityAdd); err != nil {
		return nil, err
	}
	customer, err := domain.NewCustomer(actor.TenantID, domain.Contact{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
	}, actor.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.Create(ctx, customer)
}

func (s *Service) GetCustomer(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) (*domain.Customer, error) {
	if err := actor.Authorize(accessdomain.CapabilityRead); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, actor.TenantID, id)
}

func (s *Service) ListCustomers(ctx context.Context, actor accessdomain.Actor, query types.ListCustomersQuery) ([]*domain.Customer, error) {
	if err := actor.Authorize(accessdomain.CapabilityRead); err != nil {
		return nil, err
	}
	filter := ports.CustomerFilter{TenantID: actor.TenantID, Search: strings.TrimSpace(query.Search)}
	switch strings.ToLower(strings.TrimSpace(query.Sort)) {
	case "", "recent":
	case "oldest":
		filter.OldestFirst = true
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, query.Sort)
	}
	if query.Limit < 0 || query.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidInput)
	}
	filter.Limit = query.Limit
	if filter.Limit == 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	filter.Offset = query.Offset
	return s.repo.List(ctx, filter)
}

// UpdateCustomer applies a partial contact update.
func (s *Service) UpdateCustomer(ctx context.Context, actor accessdomain.Actor, input types.UpdateCustomerInput) (*domain.Customer, error) {
	if err := actor.Authorize(accessdomain.CapabilityEdit); err != nil {
		return nil, err
	}
	customer, err := s.repo.GetByID(ctx, actor.TenantID, input.ID)
	if err != nil {
		return nil, err
	}
	contact := domain.Contact{Name: customer.Name, Phone: customer.Phone, Email: customer.Email, Address: customer.Address}
	if input.Name != nil {
		contact.Name = *input.Name
	}
	if input.Phone != nil {
		contact.Phone = *input.Phone
	}
	if input.Email != nil {
		contact.Email = *input.Email
	}
	if input.Address != nil {
		contact.Address = *input.Address
	}
	if err := customer.UpdateContact(contact); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Update(ctx, customer)
}

// DeleteCustomer removes a customer whose credit is fully settled.
func (s *Service) DeleteCustomer(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) error {
	if err := actor.Authorize(accessdomain.CapabilityDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, actor.TenantID, id)
}

func (s *Service) ListCreditEntries(ctx context.Context, actor accessdomain.Actor, customerID uuid.UUID) ([]*domain.CreditEntry, error) {
	if err := actor.Authorize(accessdomain.CapabilityRead); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, actor.TenantID, customerID); err != nil {
		return nil, err
	}
	return s.repo.ListCreditEntries(ctx, actor.TenantID, customerID)
}

var _ ports.Service = (*Service)(nil)
