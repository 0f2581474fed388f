package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.temporal.io/sdk/client"

	invtypes "github.com/Apurer/fabric-inventory/internal/domains/inventory/application/types"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port               string
	Environment        string
	PostgresDSN        string
	AutoMigrate        bool
	TemporalAddress    string
	TemporalNamespace  string
	TemporalDisabled   bool
	RabbitMQURL        string
	CatalogBaseURL     string
	CatalogAPIToken    string
	AuditJournalFile   string
	TrustCallerHeaders bool
	// BootstrapAdminToken is registered as an admin credential at startup when set.
	BootstrapAdminToken string
	HealthDefaultLimit  int
}

// Production reports whether internal error detail must be hidden from responses.
func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, "production") || strings.EqualFold(c.Environment, "prod")
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                envDefault("PORT", "8080"),
		Environment:         envDefault("ENVIRONMENT", "local"),
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		AutoMigrate:         isTruthy(envDefault("AUTO_MIGRATE", "true")),
		TemporalAddress:     envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:   envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:    isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		RabbitMQURL:         strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		CatalogBaseURL:      strings.TrimSpace(os.Getenv("CATALOG_BASE_URL")),
		CatalogAPIToken:     strings.TrimSpace(os.Getenv("CATALOG_API_TOKEN")),
		AuditJournalFile:    strings.TrimSpace(os.Getenv("AUDIT_JOURNAL_FILE")),
		TrustCallerHeaders:  isTruthy(os.Getenv("TRUST_CALLER_HEADERS")),
		BootstrapAdminToken: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_TOKEN")),
		HealthDefaultLimit:  invtypes.DefaultHealthLimit,
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	if raw := strings.TrimSpace(os.Getenv("HEALTH_DEFAULT_LIMIT")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > invtypes.MaxHealthLimit {
			return Config{}, fmt.Errorf("HEALTH_DEFAULT_LIMIT must be an integer between 1 and %d", invtypes.MaxHealthLimit)
		}
		cfg.HealthDefaultLimit = limit
	}
	if cfg.Production() && cfg.TrustCallerHeaders && cfg.BootstrapAdminToken != "" {
		return Config{}, fmt.Errorf("BOOTSTRAP_ADMIN_TOKEN is not allowed together with TRUST_CALLER_HEADERS in production")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
