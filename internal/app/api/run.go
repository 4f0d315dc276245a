package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	shopserver "github.com/Apurer/go-gin-shop-server/go"

	salesworkflows "github.com/Apurer/go-gin-shop-server/internal/domains/sales/adapters/workflows"
	salesports "github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/auth"
	platformobservability "github.com/Apurer/go-gin-shop-server/internal/platform/observability"
)

// Run boots the shop HTTP API with observability, stores, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "shop-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	services, cleanup, err := BuildServices(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()

	var runner salesports.ReconciliationRunner = salesworkflows.NewInlineReconciliation(services.Sales)
	if temporalClient, err := ConnectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running reconciliation inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		runner = salesworkflows.NewTemporalReconciliation(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}
	if cfg.AuthDisabled {
		logger.Warn("AUTH_DISABLED set, trusting actor headers")
	}

	responder := shopserver.NewResponder(logger)
	handlers := shopserver.ApiHandleFunctions{
		SaleAPI:           shopserver.NewSaleAPI(services.Sales, responder),
		ItemAPI:           shopserver.NewItemAPI(services.Inventory, responder),
		CustomerAPI:       shopserver.NewCustomerAPI(services.Customers, responder),
		ReconciliationAPI: shopserver.NewReconciliationAPI(services.Sales, runner, responder),
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router = shopserver.NewRouterWithGinEngine(router, handlers, auth.Config{
		Secret:   []byte(cfg.AuthJWTSecret),
		Disabled: cfg.AuthDisabled,
	})
	addr := ":" + cfg.Port
	logger.Info("shop API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("shop API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// ConnectTemporalClient dials Temporal with tracing and structured logging.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
