// Package config handles configuration for the vault server, layering
// defaults, an optional JSON file, environment variables, and command-line
// flags.
package config

import (
	"fmt"
	"time"

	"github.com/okolodev/credvault/internal/common"
)

// Config holds runtime settings for the CredVault server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx).
//   - TokenSecret: HMAC secret for signing session tokens (HS256).
//   - EncryptionKey: operator-supplied master secret; normalized into the
//     cipher key at startup. Distinct from TokenSecret.
//   - TokenValidityDuration: session token lifetime.
//
// DatabaseDSN, TokenSecret, and EncryptionKey are required; Validate
// rejects a Config missing any of them and the process must not start.
type Config struct {
	EndpointAddr          string
	DatabaseDSN           string
	TokenSecret           string
	EncryptionKey         string
	TokenValidityDuration time.Duration
}

// LoadDefaults populates the fields that have safe defaults. The three
// required secrets deliberately have none.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":3000"
	c.TokenValidityDuration = 8 * time.Hour
}

// Validate reports a configuration error if any required setting is absent.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: DATABASE_DSN is not set", common.ErrConfiguration)
	}
	if c.TokenSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is not set", common.ErrConfiguration)
	}
	if c.EncryptionKey == "" {
		return fmt.Errorf("%w: ENCRYPTION_KEY is not set", common.ErrConfiguration)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment, and finally command-line
// flags. The result is not validated; callers run Validate before use.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
