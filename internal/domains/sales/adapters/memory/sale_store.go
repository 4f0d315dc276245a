package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/memdb"
)

var _ ports.SaleStore = (*SaleStore)(nil)

// SaleStore keeps sales in a memdb table.
type SaleStore struct {
	db    *memdb.DB
	sales *memdb.Table[uuid.UUID, *domain.Sale]
}

func NewSaleStore(db *memdb.DB) *SaleStore {
	return &SaleStore{
		db:    db,
		sales: memdb.NewTable[uuid.UUID, *domain.Sale](db, func(s *domain.Sale) *domain.Sale { return s.Clone() }),
	}
}

func (s *SaleStore) Insert(ctx context.Context, sale *domain.Sale) error {
	if sale == nil {
		return errors.New("sale is nil")
	}
	return s.db.Update(ctx, func(ctx context.Context) error {
		if _, exists := s.sales.Get(sale.ID); exists {
			return errors.New("sale id already exists")
		}
		s.sales.Put(sale.ID, sale)
		return nil
	})
}

func (s *SaleStore) Update(ctx context.Context, sale *domain.Sale) error {
	if sale == nil {
		return errors.New("sale is nil")
	}
	return s.db.Update(ctx, func(ctx context.Context) error {
		existing, ok := s.sales.Get(sale.ID)
		if !ok || existing.TenantID != sale.TenantID {
			return ports.ErrSaleNotFound
		}
		s.sales.Put(sale.ID, sale)
		return nil
	})
}

func (s *SaleStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Sale, error) {
	var sale *domain.Sale
	err := s.db.View(ctx, func(ctx context.Context) error {
		found, ok := s.sales.Get(id)
		if !ok || found.TenantID != tenantID {
			return ports.ErrSaleNotFound
		}
		sale = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetForUpdate relies on the unit of work holding the writer lock.
func (s *SaleStore) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Sale, error) {
	var sale *domain.Sale
	err := s.db.Update(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.GetByID(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *SaleStore) List(ctx context.Context, filter ports.SaleFilter) ([]*domain.Sale, error) {
	var list []*domain.Sale
	search := strings.ToLower(filter.Search)
	err := s.db.View(ctx, func(ctx context.Context) error {
		s.sales.Scan(func(_ uuid.UUID, sale *domain.Sale) bool {
			switch {
			case sale.TenantID != filter.TenantID:
			case !filter.IncludeVoided && sale.Status == domain.StatusVoided:
			case len(filter.PaymentTypes) > 0 && !slices.Contains(filter.PaymentTypes, sale.PaymentType):
			case filter.CustomerID != nil && (sale.CustomerID == nil || *sale.CustomerID != *filter.CustomerID):
			case search != "" && !strings.Contains(strings.ToLower(sale.WalkInLabel), search):
			default:
				list = append(list, sale)
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if filter.OldestFirst {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return paginate(list, filter.Limit, filter.Offset), nil
}

func (s *SaleStore) CreditTotals(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	totals := map[uuid.UUID]decimal.Decimal{}
	err := s.db.View(ctx, func(ctx context.Context) error {
		s.sales.Scan(func(_ uuid.UUID, sale *domain.Sale) bool {
			if sale.TenantID == tenantID {
				if amount := sale.CreditAmount(); !amount.IsZero() {
					totals[*sale.CustomerID] = totals[*sale.CustomerID].Add(amount)
				}
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
