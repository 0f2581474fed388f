package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	invrabbit "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/events/rabbitmq"
	invpostgres "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/persistence/postgres"
	invports "github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
	auditworkflows "github.com/Apurer/fabric-inventory/internal/durable/temporal/workflows/inventory"
	platformobservability "github.com/Apurer/fabric-inventory/internal/platform/observability"
	platformpostgres "github.com/Apurer/fabric-inventory/internal/platform/postgres"
	platformtemporal "github.com/Apurer/fabric-inventory/internal/platform/temporal"
	auditactivities "github.com/Apurer/fabric-inventory/internal/platform/temporal/activities/inventory"
)

func main() {
	ctx := context.Background()
	const serviceName = "fabric-inventory-worker"
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

	// The worker only exists to make audit records durable, so it refuses to run without postgres.
	db, cleanupDB := platformpostgres.ConnectOrFallback(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanupDB()
	if db == nil {
		logger.Error("audit worker requires POSTGRES_DSN")
		os.Exit(1)
	}

	var events invports.AuditLog
	if url := strings.TrimSpace(os.Getenv("RABBITMQ_URL")); url != "" {
		publisher, err := invrabbit.NewPublisher(url, serviceName)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, adjustment events disabled", slog.String("error", err.Error()))
		} else {
			defer publisher.Close()
			events = publisher
		}
	}
	activities := auditactivities.NewActivities(invpostgres.NewAuditLog(db), events)

	temporalClient, err := platformtemporal.Dial(platformtemporal.DialOptions{
		Address:   os.Getenv("TEMPORAL_ADDRESS"),
		Namespace: os.Getenv("TEMPORAL_NAMESPACE"),
		Logger:    logger,
		Tracer:    instruments.Tracer("temporal-worker"),
	})
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, auditworkflows.AuditDeliveryTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(auditworkflows.AuditDeliveryWorkflow, workflow.RegisterOptions{Name: auditworkflows.AuditDeliveryWorkflowName})
	w.RegisterActivityWithOptions(activities.AppendAdjustmentRecord, activity.RegisterOptions{Name: auditactivities.AppendAdjustmentRecordActivityName})
	w.RegisterActivityWithOptions(activities.PublishAdjustmentEvent, activity.RegisterOptions{Name: auditactivities.PublishAdjustmentEventActivityName})

	logger.Info("worker listening", slog.String("taskQueue", auditworkflows.AuditDeliveryTaskQueue))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
