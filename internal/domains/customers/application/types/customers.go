package types

import "github.com/google/uuid"

type CreateCustomerInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// UpdateCustomerInput is a partial update; nil fields are left untouched.
type UpdateCustomerInput struct {
	ID      uuid.UUID
	Name    *string
	Phone   *string
	Email   *string
	Address *string
}

// ListCustomersQuery searches name, email, address and phone.
type ListCustomersQuery struct {
	Search string
	Sort   string
	Limit  int
	Offset int
}
