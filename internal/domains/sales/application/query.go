package application

import (
	"context"
	"strings"

	"github.com/google/uuid"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
)

func (s *Service) GetSale(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) (*domain.Sale, error) {
	if err := actor.Authorize(accessdomain.CapabilityRead); err != nil {
		return nil, err
	}
	var sale *domain.Sale
	err := s.uow.View(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		sale, err = tx.Sales().GetByID(ctx, actor.TenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ListSales returns the tenant's sales, newest first unless sort is "oldest".
// Voided sales are hidden unless requested.
func (s *Service) ListSales(ctx context.Context, actor accessdomain.Actor, query types.ListSalesQuery) ([]*domain.Sale, error) {
	if err := actor.Authorize(accessdomain.CapabilityRead); err != nil {
		return nil, err
	}
	filter := ports.SaleFilter{
		TenantID:      actor.TenantID,
		Search:        strings.TrimSpace(query.Search),
		CustomerID:    query.CustomerID,
		IncludeVoided: query.IncludeVoided,
	}
	switch strings.ToLower(strings.TrimSpace(query.Sort)) {
	case "", "recent":
	case "oldest":
		filter.OldestFirst = true
	default:
		return nil, invalidInput("unknown sort %q", query.Sort)
	}
	for _, raw := range query.PaymentTypes {
		p := domain.PaymentType(strings.ToLower(strings.TrimSpace(raw)))
		if !domain.ValidPaymentType(p) {
			return nil, invalidInput("unknown payment type %q", raw)
		}
		filter.PaymentTypes = append(filter.PaymentTypes, p)
	}
	var err error
	filter.Limit, filter.Offset, err = page(query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}
	var sales []*domain.Sale
	err = s.uow.View(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		sales, err = tx.Sales().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func page(limit, offset int) (int, int, error) {
	if limit < 0 || offset < 0 {
		return 0, 0, invalidInput("limit and offset must not be negative")
	}
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit, offset, nil
}
