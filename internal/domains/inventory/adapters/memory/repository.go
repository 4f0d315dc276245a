package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/memdb"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory item store. Calls made inside a memdb transaction
// on the same DB join that transaction.
type Repository struct {
	db        *memdb.DB
	items     *memdb.Table[uuid.UUID, domain.Item]
	movements *memdb.Log[domain.StockMovement]
	now       func() time.Time
}

// NewRepository registers the item tables with db. A nil db gets a private one.
func NewRepository(db *memdb.DB) *Repository {
	if db == nil {
		db = memdb.New()
	}
	return &Repository{
		db:        db,
		items:     memdb.NewTable[uuid.UUID, domain.Item](db, cloneItem),
		movements: memdb.NewLog[domain.StockMovement](db),
		now:       time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(ctx context.Context, item *domain.Item, actorID uuid.UUID) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	clone := cloneItem(*item)
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	err := r.db.Update(ctx, func(ctx context.Context) error {
		if _, exists := r.items.Get(clone.ID); exists {
			return errors.New("item id already exists")
		}
		if r.skuTaken(clone.TenantID, clone.ID, clone.SKU) {
			return ports.ErrDuplicateSKU
		}
		now := r.now()
		clone.CreatedAt = now
		clone.UpdatedAt = now
		r.items.Put(clone.ID, clone)
		if clone.StockQuantity > 0 {
			r.movements.Append(domain.NewMovement(domain.StockAdjustment{
				TenantID: clone.TenantID,
				ItemID:   clone.ID,
				Delta:    clone.StockQuantity,
				Reason:   domain.ReasonOpening,
				ActorID:  actorID,
			}, clone.StockQuantity, now))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *Repository) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	var saved domain.Item
	err := r.db.Update(ctx, func(ctx context.Context) error {
		existing, ok := r.items.Get(item.ID)
		if !ok || existing.TenantID != item.TenantID {
			return ports.ErrNotFound
		}
		if r.skuTaken(item.TenantID, item.ID, item.SKU) {
			return ports.ErrDuplicateSKU
		}
		existing.Name = item.Name
		existing.Category = item.Category
		existing.UnitPrice = item.UnitPrice
		existing.RestockThreshold = item.RestockThreshold
		existing.SKU = item.SKU
		existing.UpdatedAt = r.now()
		if err := existing.Validate(); err != nil {
			return err
		}
		r.items.Put(existing.ID, existing)
		saved = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Item, error) {
	var found domain.Item
	err := r.db.View(ctx, func(ctx context.Context) error {
		item, ok := r.items.Get(id)
		if !ok || item.TenantID != tenantID {
			return ports.ErrNotFound
		}
		found = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ItemFilter) ([]*domain.Item, error) {
	var list []*domain.Item
	err := r.db.View(ctx, func(ctx context.Context) error {
		search := strings.ToLower(filter.Search)
		r.items.Scan(func(_ uuid.UUID, item domain.Item) bool {
			if item.TenantID != filter.TenantID {
				return true
			}
			if search != "" && !matchesSearch(item, search) {
				return true
			}
			if filter.Category != "" && !strings.EqualFold(item.Category, filter.Category) {
				return true
			}
			if filter.Level != nil && item.Level() != *filter.Level {
				return true
			}
			clone := item
			list = append(list, &clone)
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if filter.Sort == ports.SortOldest {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return paginate(list, filter.Limit, filter.Offset), nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.Update(ctx, func(ctx context.Context) error {
		item, ok := r.items.Get(id)
		if !ok || item.TenantID != tenantID {
			return ports.ErrNotFound
		}
		r.items.Delete(id)
		return nil
	})
}

func (r *Repository) AdjustStock(ctx context.Context, adj domain.StockAdjustment) (*domain.StockMovement, error) {
	if err := adj.Validate(); err != nil {
		return nil, err
	}
	var movement domain.StockMovement
	err := r.db.Update(ctx, func(ctx context.Context) error {
		item, ok := r.items.Get(adj.ItemID)
		if !ok || item.TenantID != adj.TenantID {
			return ports.ErrNotFound
		}
		if item.StockQuantity+adj.Delta < 0 {
			return ports.ErrInsufficientStock
		}
		now := r.now()
		item.StockQuantity += adj.Delta
		item.UpdatedAt = now
		r.items.Put(item.ID, item)
		movement = domain.NewMovement(adj, item.StockQuantity, now)
		r.movements.Append(movement)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *Repository) ListMovements(ctx context.Context, tenantID, itemID uuid.UUID) ([]*domain.StockMovement, error) {
	var list []*domain.StockMovement
	err := r.db.View(ctx, func(ctx context.Context) error {
		r.movements.Scan(func(m domain.StockMovement) bool {
			if m.TenantID == tenantID && m.ItemID == itemID {
				clone := m
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
		sums := map[uuid.UUID]int{}
		r.movements.Scan(func(m domain.StockMovement) bool {
			if m.TenantID == tenantID {
				sums[m.ItemID] += m.Delta
			}
			return true
		})
		r.items.Scan(func(id uuid.UUID, item domain.Item) bool {
			if item.TenantID == tenantID {
				totals = append(totals, domain.LedgerTotal{ItemID: id, StockQuantity: item.StockQuantity, MovementSum: sums[id]})
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].ItemID.String() < totals[j].ItemID.String() })
	return totals, nil
}

func (r *Repository) skuTaken(tenantID, selfID uuid.UUID, sku *string) bool {
	if sku == nil {
		return false
	}
	taken := false
	r.items.Scan(func(id uuid.UUID, item domain.Item) bool {
		if id != selfID && item.TenantID == tenantID && item.SKU != nil && strings.EqualFold(*item.SKU, *sku) {
			taken = true
			return false
		}
		return true
	})
	return taken
}

func matchesSearch(item domain.Item, search string) bool {
	if strings.Contains(strings.ToLower(item.Name), search) {
		return true
	}
	return item.SKU != nil && strings.Contains(strings.ToLower(*item.SKU), search)
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func cloneItem(item domain.Item) domain.Item {
	if item.SKU != nil {
		sku := *item.SKU
		item.SKU = &sku
	}
	return item
}
