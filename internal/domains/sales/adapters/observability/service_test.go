package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	accessdomain "github.com/Apurer/go-gin-shop-server/internal/domains/access/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
)

type stubService struct {
	ports.Service
	sale *domain.Sale
	err  error
}

func (s stubService) CreateSale(context.Context, accessdomain.Actor, types.CreateSaleInput) (*domain.Sale, error) {
	return s.sale, s.err
}

func (s stubService) CancelSale(context.Context, accessdomain.Actor, uuid.UUID, types.CancelSaleInput) (*domain.Sale, error) {
	return s.sale, s.err
}

func instrumented(t *testing.T, inner ports.Service) (ports.Service, *tracetest.SpanRecorder, *sdkmetric.ManualReader, *bytes.Buffer) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	var logs bytes.Buffer
	svc := New(inner,
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
	)
	return svc, recorder, reader, &logs
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestCreateSale_RecordsSpanAndMetrics(t *testing.T) {
	sale := &domain.Sale{ID: uuid.New(), TenantID: uuid.New(), Total: decimal.NewFromInt(250), PaymentType: domain.PaymentCredit, Status: domain.StatusCompleted}
	svc, recorder, reader, logs := instrumented(t, stubService{sale: sale})
	actor := accessdomain.Actor{TenantID: sale.TenantID, UserID: uuid.New(), Role: accessdomain.RoleOwner}

	got, err := svc.CreateSale(context.Background(), actor, types.CreateSaleInput{})
	require.NoError(t, err)
	require.Equal(t, sale.ID, got.ID)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "SalesService.CreateSale", spans[0].Name())

	metrics := collect(t, reader)
	created, ok := metrics["sales.service.sales_created"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Equal(t, int64(1), created.DataPoints[0].Value)
	total, ok := metrics["sales.service.sale_total"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Equal(t, float64(250), total.DataPoints[0].Sum)
	require.Contains(t, logs.String(), "sale created")
}

func TestCancelSale_FailureMarksSpanAndCountsFailure(t *testing.T) {
	svc, recorder, reader, logs := instrumented(t, stubService{err: domain.ErrAlreadyCancelled})
	actor := accessdomain.Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: accessdomain.RoleOwner}

	_, err := svc.CancelSale(context.Background(), actor, uuid.New(), types.CancelSaleInput{})
	require.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status().Code)

	failures, ok := collect(t, reader)["sales.service.failures"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Equal(t, int64(1), failures.DataPoints[0].Value)
	require.Contains(t, logs.String(), `"level":"WARN"`)
}
