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
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/ports"
)

const tracerName = "github.com/Apurer/go-gin-shop-server/internal/domains/customers/adapters/observability/service"

// Service decorates the customer service with tracing and logging.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	changes metric.Int64Counter
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

// WithMeter counts customer writes by operation.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m != nil {
			s.changes, _ = m.Int64Counter("customers.service.changes", metric.WithDescription("Customer records created, updated or deleted"))
		}
	}
}

// New wraps the core customer service.
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

func (s *Service) CreateCustomer(ctx context.Context, actor accessdomain.Actor, input types.CreateCustomerInput) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.CreateCustomer", trace.WithAttributes(attribute.String("tenant.id", actor.TenantID.String())))
	defer span.End()

	customer, err := s.inner.CreateCustomer(ctx, actor, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create customer")
	}
	s.countChange(ctx, "created")
	s.logInfo(ctx, "customer created", slog.String("customer.id", customer.ID.String()))
	return customer, nil
}

func (s *Service) GetCustomer(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.GetCustomer", trace.WithAttributes(attribute.String("customer.id", id.String())))
	defer span.End()

	customer, err := s.inner.GetCustomer(ctx, actor, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load customer", slog.String("customer.id", id.String()))
	}
	return customer, nil
}

func (s *Service) ListCustomers(ctx context.Context, actor accessdomain.Actor, query types.ListCustomersQuery) ([]*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.ListCustomers", trace.WithAttributes(attribute.String("tenant.id", actor.TenantID.String())))
	defer span.End()

	customers, err := s.inner.ListCustomers(ctx, actor, query)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list customers")
	}
	span.SetAttributes(attribute.Int("customers.count", len(customers)))
	return customers, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, actor accessdomain.Actor, input types.UpdateCustomerInput) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.UpdateCustomer", trace.WithAttributes(attribute.String("customer.id", input.ID.String())))
	defer span.End()

	customer, err := s.inner.UpdateCustomer(ctx, actor, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update customer", slog.String("customer.id", input.ID.String()))
	}
	s.countChange(ctx, "updated")
	s.logInfo(ctx, "customer updated", slog.String("customer.id", customer.ID.String()))
	return customer, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, actor accessdomain.Actor, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "CustomerService.DeleteCustomer", trace.WithAttributes(attribute.String("customer.id", id.String())))
	defer span.End()

	if err := s.inner.DeleteCustomer(ctx, actor, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete customer", slog.String("customer.id", id.String()))
	}
	s.countChange(ctx, "deleted")
	s.logInfo(ctx, "customer deleted", slog.String("customer.id", id.String()))
	return nil
}

func (s *Service) ListCreditEntries(ctx context.Context, actor accessdomain.Actor, customerID uuid.UUID) ([]*domain.CreditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.ListCreditEntries", trace.WithAttributes(attribute.String("customer.id", customerID.String())))
	defer span.End()

	entries, err := s.inner.ListCreditEntries(ctx, actor, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list credit entries", slog.String("customer.id", customerID.String()))
	}
	return entries, nil
}

func (s *Service) countChange(ctx context.Context, op string) {
	if s.changes != nil {
		s.changes.Add(ctx, 1, metric.WithAttributes(attribute.String("customer.operation", op)))
	}
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
