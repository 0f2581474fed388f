package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	inventoryserver "github.com/Apurer/fabric-inventory/go"

	catalogclient "github.com/Apurer/fabric-inventory/internal/clients/http/catalog"
	accessdomain "github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	accessmemory "github.com/Apurer/fabric-inventory/internal/domains/access/adapters/memory"
	accesspostgres "github.com/Apurer/fabric-inventory/internal/domains/access/adapters/persistence/postgres"
	accessports "github.com/Apurer/fabric-inventory/internal/domains/access/ports"
	invaudit "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/audit"
	invrabbit "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/events/rabbitmq"
	invcatalog "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/external/catalog"
	invmemory "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/memory"
	invobs "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/observability"
	invpostgres "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/persistence/postgres"
	invworkflows "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/workflows"
	invapp "github.com/Apurer/fabric-inventory/internal/domains/inventory/application"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	invports "github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
	"github.com/Apurer/fabric-inventory/internal/platform/migrations"
	platformobservability "github.com/Apurer/fabric-inventory/internal/platform/observability"
	platformpostgres "github.com/Apurer/fabric-inventory/internal/platform/postgres"
	platformtemporal "github.com/Apurer/fabric-inventory/internal/platform/temporal"
)

const serviceName = "fabric-inventory-api"

// Run boots the inventory HTTP API with observability, stores, and audit delivery wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
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

	db, cleanupDB := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()
	if db != nil && cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to migrate inventory schema: %w", err)
		}
	}
	stores := buildStores(db, logger)
	catalog := buildCatalog(cfg, stores.catalog, logger)

	auditSink, closeAudit, err := buildAuditChain(cfg, instruments, db, stores.audit, logger)
	if err != nil {
		return err
	}
	defer closeAudit()

	coreService := invapp.NewService(stores.ledger, catalog, auditSink, invapp.WithAuditReader(stores.audit))
	service := invobs.New(
		coreService,
		invobs.WithLogger(logger),
		invobs.WithTracer(instruments.Tracer("internal.inventory.application")),
		invobs.WithMeter(instruments.Meter("internal.inventory.application")),
	)

	if err := bootstrapAdmin(ctx, cfg, stores.credentials); err != nil {
		return fmt.Errorf("failed to register bootstrap admin credential: %w", err)
	}
	if cfg.TrustCallerHeaders {
		logger.Warn("trusting X-Actor-* caller headers; the API must only be reachable through the authenticating gateway")
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	responder := inventoryserver.NewResponder(cfg.Production())
	metrics := platformobservability.NewHTTPMetrics("inventory")
	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName), metrics.Middleware())
	router := inventoryserver.NewRouterWithGinEngine(engine, inventoryserver.ApiHandleFunctions{
		InventoryAPI: inventoryserver.NewInventoryAPI(service,
			inventoryserver.WithResponder(responder),
			inventoryserver.WithDefaultHealthLimit(cfg.HealthDefaultLimit),
		),
		Metrics: metrics.Handler(),
	}, inventoryserver.Authenticate(inventoryserver.AuthConfig{
		Credentials:        stores.credentials,
		TrustCallerHeaders: cfg.TrustCallerHeaders,
	}, responder))

	return serve(ctx, ":"+cfg.Port, router, logger)
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("inventory API listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("inventory API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("inventory API shutting down", slog.String("addr", addr))
		return srv.Shutdown(shutdownCtx)
	}
}

type stores struct {
	ledger      invports.Ledger
	catalog     invports.CatalogLookup
	audit       invports.AuditStore
	credentials accessports.CredentialStore
}

func buildStores(db *gorm.DB, logger *slog.Logger) stores {
	if db == nil {
		logger.Warn("inventory ledger, catalog, audit and credentials running in memory; data is lost on restart")
		return stores{
			ledger:      invmemory.NewLedger(),
			catalog:     invmemory.NewCatalog(),
			audit:       invmemory.NewAuditLog(),
			credentials: accessmemory.NewCredentialStore(),
		}
	}
	logger.Info("inventory stores configured with postgres")
	return stores{
		ledger:      invpostgres.NewLedger(db),
		catalog:     invpostgres.NewCatalog(db),
		audit:       invpostgres.NewAuditLog(db),
		credentials: accesspostgres.NewCredentialStore(db),
	}
}

// buildCatalog prefers the commerce admin API and falls back to the local variant table.
func buildCatalog(cfg Config, local invports.CatalogLookup, logger *slog.Logger) invports.CatalogLookup {
	if cfg.CatalogBaseURL == "" {
		return local
	}
	c, err := catalogclient.NewClient(cfg.CatalogBaseURL, catalogclient.WithAPIToken(cfg.CatalogAPIToken))
	if err != nil {
		logger.Warn("catalog client unavailable, using local variant linkage", slog.String("error", err.Error()))
		return local
	}
	logger.Info("catalog lookup configured", slog.String("baseURL", cfg.CatalogBaseURL))
	return invcatalog.NewLookup(c)
}

// buildAuditChain assembles primary sink -> journal fallback -> event mirror. With Temporal
// reachable the worker owns persistence and publishing, so no mirror is attached here.
func buildAuditChain(cfg Config, instruments *platformobservability.Instruments, db *gorm.DB, store invports.AuditLog, logger *slog.Logger) (invports.AuditLog, func(), error) {
	journal, err := invaudit.NewJournal(cfg.AuditJournalFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audit journal: %w", err)
	}
	closers := []func(){func() { _ = journal.Sync() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if db != nil {
		temporalClient, err := platformtemporal.Dial(platformtemporal.DialOptions{
			Address:   cfg.TemporalAddress,
			Namespace: cfg.TemporalNamespace,
			Disabled:  cfg.TemporalDisabled,
			Logger:    logger,
			Tracer:    instruments.Tracer("temporal-client"),
		})
		if err != nil {
			logger.Warn("Temporal unavailable, appending audit records inline", slog.String("error", err.Error()))
		} else {
			closers = append(closers, temporalClient.Close)
			logger.Info("Temporal audit delivery enabled", slog.String("namespace", cfg.TemporalNamespace))
			return invaudit.WithFallback(invworkflows.NewTemporalAuditLog(temporalClient), journal), cleanup, nil
		}
	}

	chain := invaudit.WithFallback(store, journal)
	if cfg.RabbitMQURL == "" {
		return chain, cleanup, nil
	}
	publisher, err := invrabbit.NewPublisher(cfg.RabbitMQURL, serviceName)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, adjustment events disabled", slog.String("error", err.Error()))
		return chain, cleanup, nil
	}
	closers = append(closers, publisher.Close)
	onError := func(ctx context.Context, record domain.AdjustmentRecord, err error) {
		logger.WarnContext(ctx, "adjustment event publish failed",
			slog.String("adjustmentId", record.ID),
			slog.String("error", err.Error()),
		)
	}
	return invaudit.NewMirror(chain, onError, publisher), cleanup, nil
}

func bootstrapAdmin(ctx context.Context, cfg Config, credentials accessports.CredentialStore) error {
	if cfg.BootstrapAdminToken == "" {
		return nil
	}
	return credentials.Save(ctx, accessdomain.Credential{
		Token:  cfg.BootstrapAdminToken,
		Caller: accessdomain.Caller{ID: "bootstrap-admin", ActorType: accessdomain.ActorAdmin},
	})
}
