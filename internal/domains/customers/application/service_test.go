package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/memory"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/ports"
)

func TestCreateCustomer_StartsWithZeroBalance(t *testing.T) {
	repo := memory.NewRepository(nil)
	svc := NewService(repo)
	owner := accessdomain.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: accessdomain.RoleOwner}

	customer, err := svc.CreateCustomer(context.Background(), owner, types.CreateCustomerInput{Name: "Ana", Email: "Ana@Example.com "})
	require.NoError(t, err)
	require.True(t, customer.CreditBalance.IsZero())
	require.Equal(t, "ana@example.com", customer.Email)

	_, err = svc.CreateCustomer(context.Background(), owner, types.CreateCustomerInput{Name: "Bo", Email: "not-an-email"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestDeleteCustomer_RefusesOutstandingBalance(t *testing.T) {
	repo := memory.NewRepository(nil)
	svc := NewService(repo)
	ctx := context.Background()
	owner := accessdomain.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: accessdomain.RoleOwner}

	customer, err := svc.CreateCustomer(ctx, owner, types.CreateCustomerInput{Name: "Ana"})
	require.NoError(t, err)
	_, err = repo.AdjustCredit(ctx, domain.CreditAdjustment{
		TenantID:   owner.TenantID,
		CustomerID: customer.ID,
		Delta:      decimal.NewFromInt(40),
		Reason:     domain.ReasonSaleCredit,
		ActorID:    owner.UserID,
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteCustomer(ctx, owner, customer.ID), domain.ErrOutstandingBalance)

	entries, err := svc.ListCreditEntries(ctx, owner, customer.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, decimal.NewFromInt(40).Equal(entries[0].BalanceAfter))

	_, err = repo.AdjustCredit(ctx, domain.CreditAdjustment{
		TenantID:   owner.TenantID,
		CustomerID: customer.ID,
		Delta:      decimal.NewFromInt(-40),
		Reason:     domain.ReasonSaleReversal,
		ActorID:    owner.UserID,
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCustomer(ctx, owner, customer.ID))
	_, err = svc.GetCustomer(ctx, owner, customer.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdateCustomer_PartialAndPermissioned(t *testing.T) {
	repo := memory.NewRepository(nil)
	svc := NewService(repo)
	ctx := context.Background()
	owner := accessdomain.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: accessdomain.RoleOwner}
	customer, err := svc.CreateCustomer(ctx, owner, types.CreateCustomerInput{Name: "Ana", Phone: "555"})
	require.NoError(t, err)

	staff := accessdomain.Actor{TenantID: owner.TenantID, UserID: uuid.New(), Role: accessdomain.RoleStaff}
	address := "1 Main St"
	_, err = svc.UpdateCustomer(ctx, staff, types.UpdateCustomerInput{ID: customer.ID, Address: &address})
	require.ErrorIs(t, err, accessdomain.ErrPermissionDenied)

	staff.Permissions.CanEdit = true
	updated, err := svc.UpdateCustomer(ctx, staff, types.UpdateCustomerInput{ID: customer.ID, Address: &address})
	require.NoError(t, err)
	require.Equal(t, "Ana", updated.Name)
	require.Equal(t, "555", updated.Phone)
	require.Equal(t, address, updated.Address)
}

func TestListCustomers_SearchesContactFields(t *testing.T) {
	repo := memory.NewRepository(nil)
	svc := NewService(repo)
	ctx := context.Background()
	owner := accessdomain.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: accessdomain.RoleOwner}
	_, err := svc.CreateCustomer(ctx, owner, types.CreateCustomerInput{Name: "Ana", Address: "Harbour Road"})
	require.NoError(t, err)
	_, err = svc.CreateCustomer(ctx, owner, types.CreateCustomerInput{Name: "Bo", Email: "bo@shop.test"})
	require.NoError(t, err)

	found, err := svc.ListCustomers(ctx, owner, types.ListCustomersQuery{Search: "harbour"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Ana", found[0].Name)

	all, err := svc.ListCustomers(ctx, owner, types.ListCustomersQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = svc.ListCustomers(ctx, owner, types.ListCustomersQuery{Sort: "name"})
	require.ErrorIs(t, err, ErrInvalidInput)
}
