package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/ports"
)

type stubService struct {
	ports.Service
	customer *domain.Customer
	err      error
}

func (s stubService) CreateCustomer(context.Context, accessdomain.Actor, types.CreateCustomerInput) (*domain.Customer, error) {
	return s.customer, s.err
}

func (s stubService) DeleteCustomer(context.Context, accessdomain.Actor, uuid.UUID) error {
	return s.err
}

func instrumented(t *testing.T, inner ports.Service) (ports.Service, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return New(inner, WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test"))), recorder, reader
}

func changes(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "customers.service.changes" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				op, _ := dp.Attributes.Value(attribute.Key("customer.operation"))
				out[op.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestCreateCustomer_CountsChange(t *testing.T) {
	customer := &domain.Customer{ID: uuid.New(), TenantID: uuid.New(), Name: "Ana"}
	svc, recorder, reader := instrumented(t, stubService{customer: customer})
	actor := accessdomain.Actor{TenantID: customer.TenantID, UserID: uuid.New(), Role: accessdomain.RoleOwner}

	got, err := svc.CreateCustomer(context.Background(), actor, types.CreateCustomerInput{Name: "Ana"})
	require.NoError(t, err)
	require.Equal(t, customer.ID, got.ID)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "CustomerService.CreateCustomer", spans[0].Name())
	require.Equal(t, map[string]int64{"created": 1}, changes(t, reader))
}

func TestDeleteCustomer_FailureIsNotCounted(t *testing.T) {
	svc, recorder, reader := instrumented(t, stubService{err: errors.New("boom")})
	actor := accessdomain.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: accessdomain.RoleOwner}

	require.Error(t, svc.DeleteCustomer(context.Background(), actor, uuid.New()))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.Empty(t, changes(t, reader))
}
