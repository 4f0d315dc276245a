package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
)

const tracerName = "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/observability/service"

// Service decorates the sales service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
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
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core sales service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
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

func (s *Service) CreateSale(ctx context.Context, actor accessdomain.Actor, input types.CreateSaleInput) (*domain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.CreateSale", trace.WithAttributes(
		actorAttrs(actor, attribute.Int("sale.lines", len(input.Lines)), attribute.Bool("sale.idempotent", input.IdempotencyKey != ""))...))
	defer span.End()

	s.logInfo(ctx, "creating sale", slog.String("tenant.id", actor.TenantID.String()), slog.Int("sale.lines", len(input.Lines)))
	sale, err := s.inner.CreateSale(ctx, actor, input)
	if err != nil {
		s.metrics.recordFailure(ctx, "create", err)
		return nil, s.handleError(ctx, span, err, "failed to create sale", slog.String("tenant.id", actor.TenantID.String()))
	}
	span.SetAttributes(attribute.String("sale.id", sale.ID.String()), attribute.String("sale.total", sale.Total.StringFixed(2)))
	s.metrics.recordCreated(ctx, sale)
	s.logInfo(ctx, "sale created", saleAttrs(sale)...)
	return sale, nil
}

func (s *Service) GetSale(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) (*domain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.GetSale", trace.WithAttributes(actorAttrs(actor, attribute.String("sale.id", id.String()))...))
	defer span.End()

	sale, err := s.inner.GetSale(ctx, actor, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load sale", slog.String("sale.id", id.String()))
	}
	return sale, nil
}

func (s *Service) ListSales(ctx context.Context, actor accessdomain.Actor, query types.ListSalesQuery) ([]*domain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.ListSales", trace.WithAttributes(actorAttrs(actor)...))
	defer span.End()

	sales, err := s.inner.ListSales(ctx, actor, query)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list sales", slog.String("tenant.id", actor.TenantID.String()))
	}
	span.SetAttributes(attribute.Int("sales.count", len(sales)))
	return sales, nil
}

func (s *Service) AmendSale(ctx context.Context, actor accessdomain.Actor, id uuid.UUID, input types.AmendSaleInput) (*domain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.AmendSale", trace.WithAttributes(actorAttrs(actor, attribute.String("sale.id", id.String()))...))
	defer span.End()

	s.logInfo(ctx, "amending sale", slog.String("sale.id", id.String()))
	sale, err := s.inner.AmendSale(ctx, actor, id, input)
	if err != nil {
		s.metrics.recordFailure(ctx, "amend", err)
		return nil, s.handleError(ctx, span, err, "failed to amend sale", slog.String("sale.id", id.String()))
	}
	s.metrics.recordAmended(ctx)
	s.logInfo(ctx, "sale amended", saleAttrs(sale)...)
	return sale, nil
}

func (s *Service) CancelSale(ctx context.Context, actor accessdomain.Actor, id uuid.UUID, input types.CancelSaleInput) (*domain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.CancelSale", trace.WithAttributes(actorAttrs(actor, attribute.String("sale.id", id.String()))...))
	defer span.End()

	s.logInfo(ctx, "cancelling sale", slog.String("sale.id", id.String()))
	sale, err := s.inner.CancelSale(ctx, actor, id, input)
	if err != nil {
		s.metrics.recordFailure(ctx, "cancel", err)
		return nil, s.handleError(ctx, span, err, "failed to cancel sale", slog.String("sale.id", id.String()))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "sale cancelled", saleAttrs(sale)...)
	return sale, nil
}

func (s *Service) Reconcile(ctx context.Context, actor accessdomain.Actor) (*types.ReconciliationReport, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.Reconcile", trace.WithAttributes(actorAttrs(actor)...))
	defer span.End()

	report, err := s.inner.Reconcile(ctx, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to reconcile", slog.String("tenant.id", actor.TenantID.String()))
	}
	span.SetAttributes(attribute.Int("reconciliation.findings", len(report.Findings)))
	if !report.Consistent() && s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "ledger drift detected",
			slog.String("tenant.id", actor.TenantID.String()),
			slog.Int("findings", len(report.Findings)),
			slog.Any("checks", report.FailedChecks()))
	}
	return report, nil
}

func (s *Service) RecordReconciliation(ctx context.Context, actor accessdomain.Actor, report *types.ReconciliationReport) error {
	ctx, span := s.tracer.Start(ctx, "SalesService.RecordReconciliation", trace.WithAttributes(actorAttrs(actor)...))
	defer span.End()

	if err := s.inner.RecordReconciliation(ctx, actor, report); err != nil {
		return s.handleError(ctx, span, err, "failed to record reconciliation", slog.String("tenant.id", actor.TenantID.String()))
	}
	return nil
}

func (s *Service) ListReconciliations(ctx context.Context, actor accessdomain.Actor, limit int) ([]*types.ReconciliationReport, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.ListReconciliations", trace.WithAttributes(actorAttrs(actor)...))
	defer span.End()

	reports, err := s.inner.ListReconciliations(ctx, actor, limit)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list reconciliations", slog.String("tenant.id", actor.TenantID.String()))
	}
	return reports, nil
}

func actorAttrs(actor accessdomain.Actor, extra ...attribute.KeyValue) []attribute.KeyValue {
	return append([]attribute.KeyValue{
		attribute.String("tenant.id", actor.TenantID.String()),
		attribute.String("actor.role", string(actor.Role)),
	}, extra...)
}

func saleAttrs(sale *domain.Sale) []slog.Attr {
	return []slog.Attr{
		slog.String("sale.id", sale.ID.String()),
		slog.String("tenant.id", sale.TenantID.String()),
		slog.String("sale.total", sale.Total.StringFixed(2)),
		slog.String("sale.payment_type", string(sale.PaymentType)),
		slog.String("sale.status", string(sale.Status)),
	}
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	level := slog.LevelError
	if isClientError(err) {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

// isClientError separates rejected requests from storage or infrastructure faults.
func isClientError(err error) bool {
	return errors.Is(err, application.ErrInvalidInput) ||
		errors.Is(err, application.ErrPermissionDenied) ||
		errors.Is(err, domain.ErrInvalidDiscount) ||
		errors.Is(err, domain.ErrAlreadyCancelled) ||
		errors.Is(err, ports.ErrInsufficientStock) ||
		errors.Is(err, ports.ErrSaleNotFound) ||
		errors.Is(err, ports.ErrItemNotFound) ||
		errors.Is(err, ports.ErrCustomerNotFound) ||
		errors.Is(err, ports.ErrIdempotencyConflict)
}

type serviceMetrics struct {
	salesCreated   metric.Int64Counter
	salesAmended   metric.Int64Counter
	salesCancelled metric.Int64Counter
	failures       metric.Int64Counter
	saleTotal      metric.Float64Histogram
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	salesCreated, _ := m.Int64Counter("sales.service.sales_created", metric.WithDescription("Number of sales recorded"))
	salesAmended, _ := m.Int64Counter("sales.service.sales_amended", metric.WithDescription("Number of sales amended"))
	salesCancelled, _ := m.Int64Counter("sales.service.sales_cancelled", metric.WithDescription("Number of sales cancelled"))
	failures, _ := m.Int64Counter("sales.service.failures", metric.WithDescription("Number of rejected or failed sale mutations"))
	saleTotal, _ := m.Float64Histogram("sales.service.sale_total", metric.WithDescription("Sale totals after discount"))
	return serviceMetrics{
		salesCreated:   salesCreated,
		salesAmended:   salesAmended,
		salesCancelled: salesCancelled,
		failures:       failures,
		saleTotal:      saleTotal,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, sale *domain.Sale) {
	attrs := metric.WithAttributes(attribute.String("sale.payment_type", string(sale.PaymentType)))
	if m.salesCreated != nil {
		m.salesCreated.Add(ctx, 1, attrs)
	}
	if m.saleTotal != nil {
		m.saleTotal.Record(ctx, sale.Total.InexactFloat64(), attrs)
	}
}

func (m serviceMetrics) recordAmended(ctx context.Context) {
	if m.salesAmended != nil {
		m.salesAmended.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	if m.salesCancelled != nil {
		m.salesCancelled.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordFailure(ctx context.Context, operation string, err error) {
	if m.failures != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.Bool("retryable", application.IsRetryable(err)),
		))
	}
}

var _ ports.Service = (*Service)(nil)
