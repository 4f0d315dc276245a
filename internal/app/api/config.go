package api

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the shop processes.
type Config struct {
	Port              string
	PostgresDSN       string
	AuthJWTSecret     string
	AuthDisabled      bool
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	// ReconcileTenants lists the tenants cmd/reconciler checks.
	ReconcileTenants []uuid.UUID
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		AuthJWTSecret:     strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")),
		AuthDisabled:      isTruthy(os.Getenv("AUTH_DISABLED")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	if cfg.AuthJWTSecret == "" && !cfg.AuthDisabled {
		return Config{}, errors.New("AUTH_JWT_SECRET is required unless AUTH_DISABLED is set")
	}
	tenants, err := parseTenants(envDefault("RECONCILE_TENANT_IDS", os.Getenv("RECONCILE_TENANT_ID")))
	if err != nil {
		return Config{}, err
	}
	cfg.ReconcileTenants = tenants
	return cfg, nil
}

func parseTenants(raw string) ([]uuid.UUID, error) {
	var tenants []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("RECONCILE_TENANT_IDS contains an invalid tenant id %q", part)
		}
		tenants = append(tenants, id)
	}
	return tenants, nil
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
