package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/memdb"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory customer store joined to memdb transactions.
type Repository struct {
	db        *memdb.DB
	customers *memdb.Table[uuid.UUID, domain.Customer]
	entries   *memdb.Log[domain.CreditEntry]
	now       func() time.Time
}

func NewRepository(db *memdb.DB) *Repository {
	if db == nil {
		db = memdb.New()
	}
	return &Repository{
		db:        db,
		customers: memdb.NewTable[uuid.UUID, domain.Customer](db, nil),
		entries:   memdb.NewLog[domain.CreditEntry](db),
		now:       time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	clone := *customer
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	err := r.db.Update(ctx, func(ctx context.Context) error {
		if _, exists := r.customers.Get(clone.ID); exists {
			return errors.New("customer id already exists")
		}
		now := r.now()
		clone.CreditBalance = decimal.Zero
		clone.CreatedAt = now
		clone.UpdatedAt = now
		r.customers.Put(clone.ID, clone)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *Repository) Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	var saved domain.Customer
	err := r.db.Update(ctx, func(ctx context.Context) error {
		existing, ok := r.customers.Get(customer.ID)
		if !ok || existing.TenantID != customer.TenantID {
			return ports.ErrNotFound
		}
		existing.Name = customer.Name
		existing.Phone = customer.Phone
		existing.Email = customer.Email
		existing.Address = customer.Address
		existing.UpdatedAt = r.now()
		r.customers.Put(existing.ID, existing)
		saved = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Customer, error) {
	var found domain.Customer
	err := r.db.View(ctx, func(ctx context.Context) error {
		customer, ok := r.customers.Get(id)
		if !ok || customer.TenantID != tenantID {
			return ports.ErrNotFound
		}
		found = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *Repository) List(ctx context.Context, filter ports.CustomerFilter) ([]*domain.Customer, error) {
	var list []*domain.Customer
	search := strings.ToLower(filter.Search)
	err := r.db.View(ctx, func(ctx context.Context) error {
		r.customers.Scan(func(_ uuid.UUID, c domain.Customer) bool {
			if c.TenantID != filter.TenantID {
				return true
			}
			if search != "" && !matchesSearch(c, search) {
				return true
			}
			clone := c
			list = append(list, &clone)
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if filter.OldestFirst {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if filter.Offset >= len(list) {
		return []*domain.Customer{}, nil
	}
	list = list[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(list) {
		list = list[:filter.Limit]
	}
	return list, nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.Update(ctx, func(ctx context.Context) error {
		customer, ok := r.customers.Get(id)
		if !ok || customer.TenantID != tenantID {
			return ports.ErrNotFound
		}
		if err := customer.EnsureDeletable(); err != nil {
			return err
		}
		r.customers.Delete(id)
		return nil
	})
}

func (r *Repository) AdjustCredit(ctx context.Context, adj domain.CreditAdjustment) (*domain.CreditEntry, error) {
	if err := adj.Validate(); err != nil {
		return nil, err
	}
	var entry domain.CreditEntry
	err := r.db.Update(ctx, func(ctx context.Context) error {
		customer, ok := r.customers.Get(adj.CustomerID)
		if !ok || customer.TenantID != adj.TenantID {
			return ports.ErrNotFound
		}
		now := r.now()
		customer.CreditBalance = customer.CreditBalance.Add(adj.Delta)
		customer.UpdatedAt = now
		r.customers.Put(customer.ID, customer)
		entry = domain.NewCreditEntry(adj, customer.CreditBalance, now)
		r.entries.Append(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *Repository) ListCreditEntries(ctx context.Context, tenantID, customerID uuid.UUID) ([]*domain.CreditEntry, error) {
	var list []*domain.CreditEntry
	err := r.db.View(ctx, func(ctx context.Context) error {
		r.entries.Scan(func(e domain.CreditEntry) bool {
			if e.TenantID == tenantID && e.CustomerID == customerID {
				clone := e
				list = append(list, &clone)
			}
			return true
		})
		return nil
	})
	return list, err
}

func (r *Repository) LedgerTotals(ctx context.Context, tenantID uuid.UUID) ([]domain.LedgerTotal, error) {
	var totals []domain.LedgerTotal
	err := r.db.View(ctx, func(ctx context.Context) error {
		sums := map[uuid.UUID]decimal.Decimal{}
		r.entries.Scan(func(e domain.CreditEntry) bool {
			if e.TenantID == tenantID {
				sums[e.CustomerID] = sums[e.CustomerID].Add(e.Delta)
			}
			return true
		})
		r.customers.Scan(func(id uuid.UUID, c domain.Customer) bool {
			if c.TenantID == tenantID {
				totals = append(totals, domain.LedgerTotal{CustomerID: id, Balance: c.CreditBalance, EntrySum: sums[id]})
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].CustomerID.String() < totals[j].CustomerID.String() })
	return totals, nil
}

func matchesSearch(c domain.Customer, search string) bool {
	for _, field := range []string{c.Name, c.Email, c.Address, c.Phone} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
