package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	accesspostgres "github.com/Apurer/fabric-inventory/internal/domains/access/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/fabric-inventory/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge credentials")
	}

	store := accesspostgres.NewCredentialStore(db)
	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to purge credentials: %v", err)
	}
	logger.Info("credential purge completed", slog.Int64("purged", purged))
}
