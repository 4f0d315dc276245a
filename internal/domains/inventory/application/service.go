package application

import (
	"context"
	"strings"

	"github.com/google/uuid"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/ports"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Service orchestrates inventory use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// CreateItem registers a new item and books its opening stock.
func (s *Service) CreateItem(ctx context.Context, actor accessdomain.Actor, input types.CreateItemInput) (*domain.Item, error) {
	if err := actor.Authorize(accessdomain.CapabilityAdd); err != nil {
		return nil, err
	}
	item, err := domain.NewItem(actor.TenantID, input.Name, input.Category, input.UnitPrice, input.OpeningStock, input.RestockThreshold, input.SKU, actor.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, item, actor.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) GetItem(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) (*domain.Item, error) {
	if err := actor.Authorize(accessdomain.CapabilityRead); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, actor.TenantID, id)
}

// ListItems applies search, category, stock-level and sort filters.
func (s *Service) ListItems(ctx context.Context, actor accessdomain.Actor, query types.ListItemsQuery) ([]*domain.Item, error) {
	if err := actor.Authorize(accessdomain.CapabilityRead); err != nil {
		return nil, err
	}
	filter := ports.ItemFilter{
		TenantID: actor.TenantID,
		Search:   strings.TrimSpace(query.Search),
		Category: strings.TrimSpace(query.Category),
	}
	switch strings.ToLower(strings.TrimSpace(query.Stock)) {
	case "":
	case string(domain.StockLevelLow):
		level := domain.StockLevelLow
		filter.Level = &level
	case string(domain.StockLevelOut):
		level := domain.StockLevelOut
		filter.Level = &level
	default:
		return nil, invalidInput("unknown stock filter %q", query.Stock)
	}
	sort, err := parseSort(query.Sort)
	if err != nil {
		return nil, err
	}
	filter.Sort = sort
	filter.Limit, filter.Offset, err = page(query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

// UpdateItem applies a partial update of descriptive fields and price.
func (s *Service) UpdateItem(ctx context.Context, actor accessdomain.Actor, input types.UpdateItemInput) (*domain.Item, error) {
	if err := actor.Authorize(accessdomain.CapabilityEdit); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, actor.TenantID, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if err := item.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Category != nil {
		item.SetCategory(*input.Category)
	}
	if input.UnitPrice != nil {
		if err := item.Reprice(*input.UnitPrice); err != nil {
			return nil, mapError(err)
		}
	}
	if input.RestockThreshold != nil {
		if err := item.SetRestockThreshold(*input.RestockThreshold); err != nil {
			return nil, mapError(err)
		}
	}
	if input.SKU != nil {
		item.SetSKU(input.SKU)
	}
	saved, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) DeleteItem(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) error {
	if err := actor.Authorize(accessdomain.CapabilityDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, actor.TenantID, id)
}

// AdjustStock books a manual restock or correction against the stock ledger.
func (s *Service) AdjustStock(ctx context.Context, actor accessdomain.Actor, input types.AdjustStockInput) (*domain.StockMovement, error) {
	if err := actor.Authorize(accessdomain.CapabilityEdit); err != nil {
		return nil, err
	}
	reason := domain.MovementReason(strings.TrimSpace(input.Reason))
	if reason == "" {
		reason = domain.ReasonAdjustment
	}
	if reason != domain.ReasonRestock && reason != domain.ReasonAdjustment {
		return nil, invalidInput("manual stock changes accept only %q or %q", domain.ReasonRestock, domain.ReasonAdjustment)
	}
	adj := domain.StockAdjustment{
		TenantID: actor.TenantID,
		ItemID:   input.ItemID,
		Delta:    input.Delta,
		Reason:   reason,
		ActorID:  actor.UserID,
	}
	if err := adj.Validate(); err != nil {
		return nil, mapError(err)
	}
	movement, err := s.repo.AdjustStock(ctx, adj)
	if err != nil {
		return nil, mapError(err)
	}
	return movement, nil
}

func (s *Service) ListMovements(ctx context.Context, actor accessdomain.Actor, itemID uuid.UUID) ([]*domain.StockMovement, error) {
	if err := actor.Authorize(accessdomain.CapabilityRead); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, actor.TenantID, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListMovements(ctx, actor.TenantID, itemID)
}

func parseSort(raw string) (ports.SortOrder, error) {
	switch ports.SortOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ports.SortRecent:
		return ports.SortRecent, nil
	case ports.SortOldest:
		return ports.SortOldest, nil
	default:
		return "", invalidInput("unknown sort %q", raw)
	}
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

var _ ports.Service = (*Service)(nil)
