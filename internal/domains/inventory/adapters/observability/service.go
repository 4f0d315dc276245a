package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/ports"
)

const tracerName = "github.com/Apurer/go-gin-shop-server/internal/domains/inventory/adapters/observability/service"

// Service decorates the inventory service with tracing, logging, and metrics.
type Service struct {
	inner         ports.Service
	tracer        trace.Tracer
	logger        *slog.Logger
	stockAdjusted metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m != nil {
			s.stockAdjusted, _ = m.Int64Counter("inventory.service.stock_adjusted", metric.WithDescription("Manual stock adjustments by reason"))
		}
	}
}

// New wraps the core inventory service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateItem(ctx context.Context, actor accessdomain.Actor, input types.CreateItemInput) (*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.CreateItem", trace.WithAttributes(attribute.String("tenant.id", actor.TenantID.String())))
	defer span.End()

	item, err := s.inner.CreateItem(ctx, actor, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create item")
	}
	s.logInfo(ctx, "item created", slog.String("item.id", item.ID.String()), slog.Int("item.stock", item.StockQuantity))
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) (*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.GetItem", trace.WithAttributes(attribute.String("item.id", id.String())))
	defer span.End()

	item, err := s.inner.GetItem(ctx, actor, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load item", slog.String("item.id", id.String()))
	}
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, actor accessdomain.Actor, query types.ListItemsQuery) ([]*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListItems", trace.WithAttributes(attribute.String("tenant.id", actor.TenantID.String())))
	defer span.End()

	items, err := s.inner.ListItems(ctx, actor, query)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list items")
	}
	span.SetAttributes(attribute.Int("items.count", len(items)))
	return items, nil
}

func (s *Service) UpdateItem(ctx context.Context, actor accessdomain.Actor, input types.UpdateItemInput) (*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.UpdateItem", trace.WithAttributes(attribute.String("item.id", input.ID.String())))
	defer span.End()

	item, err := s.inner.UpdateItem(ctx, actor, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update item", slog.String("item.id", input.ID.String()))
	}
	s.logInfo(ctx, "item updated", slog.String("item.id", item.ID.String()))
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "InventoryService.DeleteItem", trace.WithAttributes(attribute.String("item.id", id.String())))
	defer span.End()

	if err := s.inner.DeleteItem(ctx, actor, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete item", slog.String("item.id", id.String()))
	}
	s.logInfo(ctx, "item deleted", slog.String("item.id", id.String()))
	return nil
}

func (s *Service) AdjustStock(ctx context.Context, actor accessdomain.Actor, input types.AdjustStockInput) (*domain.StockMovement, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.AdjustStock", trace.WithAttributes(
		attribute.String("item.id", input.ItemID.String()), attribute.Int("stock.delta", input.Delta)))
	defer span.End()

	movement, err := s.inner.AdjustStock(ctx, actor, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to adjust stock", slog.String("item.id", input.ItemID.String()))
	}
	if s.stockAdjusted != nil {
		s.stockAdjusted.Add(ctx, 1, metric.WithAttributes(attribute.String("stock.reason", string(movement.Reason))))
	}
	s.logInfo(ctx, "stock adjusted",
		slog.String("item.id", movement.ItemID.String()),
		slog.Int("stock.delta", movement.Delta),
		slog.Int("stock.balance", movement.BalanceAfter))
	return movement, nil
}

func (s *Service) ListMovements(ctx context.Context, actor accessdomain.Actor, itemID uuid.UUID) ([]*domain.StockMovement, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListMovements", trace.WithAttributes(attribute.String("item.id", itemID.String())))
	defer span.End()

	movements, err := s.inner.ListMovements(ctx, actor, itemID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list movements", slog.String("item.id", itemID.String()))
	}
	return movements, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

var _ ports.Service = (*Service)(nil)
