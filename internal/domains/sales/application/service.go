package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

var _ ports.Service = (*Service)(nil)

// Service runs every sale use case inside one unit of work so stock, credit
// and the sale record commit together or not at all.
type Service struct {
	uow     ports.UnitOfWork
	reports ports.ReportStore
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReportStore enables recording and listing reconciliation runs.
func WithReportStore(store ports.ReportStore) Option {
	return func(s *Service) {
		s.reports = store
	}
}

func NewService(uow ports.UnitOfWork, opts ...Option) *Service {
	s := &Service{uow: uow, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSale validates the cart, records the sale, decrements stock and books
// customer credit atomically. A repeated idempotency key with the same payload
// returns the original sale.
func (s *Service) CreateSale(ctx context.Context, actor accessdomain.Actor, input types.CreateSaleInput) (*domain.Sale, error) {
	if err := actor.Authorize(accessdomain.CapabilityAdd); err != nil {
		return nil, err
	}
	paymentType, err := parsePaymentType(input.PaymentType)
	if err != nil {
		return nil, mapError(err)
	}
	cart, err := mergeCart(input.Lines)
	if err != nil {
		return nil, mapError(err)
	}
	if input.Discount.IsNegative() {
		return nil, domain.ErrInvalidDiscount
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" {
		if fingerprint, err = FingerprintCreateSale(input); err != nil {
			return nil, err
		}
	}

	var created *domain.Sale
	err = s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		if key != "" {
			existing, err := tx.Idempotency().Get(ctx, actor.TenantID, key)
			if err != nil {
				return err
			}
			if existing != nil {
				if existing.RequestHash != fingerprint {
					return ports.ErrIdempotencyConflict
				}
				sale, err := tx.Sales().GetByID(ctx, actor.TenantID, existing.SaleID)
				if err != nil {
					return err
				}
				created = sale
				return nil
			}
		}
		if input.CustomerID != nil {
			if _, err := tx.Customers().GetByID(ctx, actor.TenantID, *input.CustomerID); err != nil {
				return err
			}
		}
		lines, err := validateCart(ctx, tx.Items(), actor.TenantID, cart, nil)
		if err != nil {
			return err
		}
		sale, err := domain.NewSale(domain.Draft{
			TenantID:       actor.TenantID,
			CreatedBy:      actor.UserID,
			CustomerID:     input.CustomerID,
			WalkInLabel:    input.WalkInLabel,
			Lines:          lines,
			Discount:       input.Discount,
			PaymentType:    paymentType,
			IdempotencyKey: key,
		}, s.now())
		if err != nil {
			return err
		}
		if err := tx.Sales().Insert(ctx, sale); err != nil {
			return err
		}
		if err := applyEffects(ctx, tx, actor, sale); err != nil {
			return err
		}
		if key != "" {
			if err := tx.Idempotency().Save(ctx, ports.IdempotencyRecord{
				TenantID:    actor.TenantID,
				Key:         key,
				RequestHash: fingerprint,
				SaleID:      sale.ID,
				CreatedAt:   sale.CreatedAt,
			}); err != nil {
				return err
			}
		}
		created = sale
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

// AmendSale reverses the sale's effects, reprices it with the patch applied and
// books the new effects. Lines already on the sale keep their price snapshot.
func (s *Service) AmendSale(ctx context.Context, actor accessdomain.Actor, id uuid.UUID, input types.AmendSaleInput) (*domain.Sale, error) {
	if err := actor.Authorize(accessdomain.CapabilityEdit); err != nil {
		return nil, err
	}
	if input.IsEmpty() {
		return nil, invalidInput("amendment changes nothing")
	}
	var (
		cart        []types.CartLine
		paymentType domain.PaymentType
		err         error
	)
	if input.Lines != nil {
		if cart, err = mergeCart(*input.Lines); err != nil {
			return nil, mapError(err)
		}
	}
	if input.PaymentType != nil {
		if paymentType, err = parsePaymentType(*input.PaymentType); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Discount != nil && input.Discount.IsNegative() {
		return nil, domain.ErrInvalidDiscount
	}

	var amended *domain.Sale
	err = s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		sale, err := tx.Sales().GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if sale.Status == domain.StatusVoided {
			return domain.ErrAlreadyCancelled
		}
		if err := reverseEffects(ctx, tx, actor, sale); err != nil {
			return err
		}
		snapshots := make(map[uuid.UUID]domain.Line, len(sale.Lines))
		for _, line := range sale.Lines {
			snapshots[line.ItemID] = line
		}
		next := cart
		if input.Lines == nil {
			next = cartFromLines(sale.Lines)
		}
		lines, err := validateCart(ctx, tx.Items(), actor.TenantID, next, snapshots)
		if err != nil {
			return err
		}
		discount := sale.Discount
		if input.Discount != nil {
			discount = *input.Discount
		}
		tender := sale.PaymentType
		if input.PaymentType != nil {
			tender = paymentType
		}
		if err := sale.Reprice(lines, discount, tender, s.now()); err != nil {
			return err
		}
		if err := applyEffects(ctx, tx, actor, sale); err != nil {
			return err
		}
		if err := tx.Sales().Update(ctx, sale); err != nil {
			return err
		}
		amended = sale
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return amended, nil
}

// CancelSale voids a completed sale, restoring stock and reversing credit.
func (s *Service) CancelSale(ctx context.Context, actor accessdomain.Actor, id uuid.UUID, input types.CancelSaleInput) (*domain.Sale, error) {
	if err := actor.Authorize(accessdomain.CapabilityDelete); err != nil {
		return nil, err
	}
	var cancelled *domain.Sale
	err := s.uow.Do(ctx, func(ctx context.Context, tx ports.Tx) error {
		sale, err := tx.Sales().GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if sale.Status == domain.StatusVoided {
			return domain.ErrAlreadyCancelled
		}
		if err := reverseEffects(ctx, tx, actor, sale); err != nil {
			return err
		}
		if err := sale.Void(actor.UserID, input.Reason, s.now()); err != nil {
			return err
		}
		if err := tx.Sales().Update(ctx, sale); err != nil {
			return err
		}
		cancelled = sale
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return cancelled, nil
}
