package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-shop-server/internal/app/api"
	platformobservability "github.com/Apurer/go-gin-shop-server/internal/platform/observability"
	salesactivities "github.com/Apurer/go-gin-shop-server/internal/platform/temporal/activities/sales"
	salesworkflows "github.com/Apurer/go-gin-shop-server/internal/platform/temporal/workflows/sales"
)

func main() {
	ctx := context.Background()
	const serviceName = "shop-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	services, cleanup, err := api.BuildServices(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()
	activities := salesactivities.NewActivities(services.Sales)

	cfg.TemporalDisabled = false
	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, salesworkflows.ReconciliationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(salesworkflows.ReconciliationWorkflow, workflow.RegisterOptions{Name: salesworkflows.ReconciliationWorkflowName})
	w.RegisterActivityWithOptions(activities.Reconcile, activity.RegisterOptions{Name: salesactivities.ReconcileActivityName})
	w.RegisterActivityWithOptions(activities.RecordReconciliation, activity.RegisterOptions{Name: salesactivities.RecordReconciliationActivityName})

	logger.Info("worker listening", slog.String("taskQueue", salesworkflows.ReconciliationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
