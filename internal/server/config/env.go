package config

import (
	"os"
	"time"
)

// parseEnv overlays Config fields from environment variables.
//
// Recognized variables:
//
//	ADDRESS          HTTP bind address
//	DATABASE_DSN     PostgreSQL DSN
//	JWT_SECRET       token signing secret
//	ENCRYPTION_KEY   master encryption secret
//	TOKEN_TTL        session token lifetime (Go duration, e.g. "8h")
//
// Unset variables leave the current value in place. An unparsable
// TOKEN_TTL is ignored rather than fatal; the required-secret check
// happens later in Validate.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		config.TokenSecret = v
	}
	if v, ok := os.LookupEnv("ENCRYPTION_KEY"); ok {
		config.EncryptionKey = v
	}
	if v, ok := os.LookupEnv("TOKEN_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
}
