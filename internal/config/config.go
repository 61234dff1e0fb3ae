package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSecret signs tokens when no secret is configured. It is public
// knowledge, so any deployment running with it accepts forged tokens.
const DefaultSecret = "secret_key_123"

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	JWTIssuer      string
	JWTTTL         time.Duration
	BcryptCost     int
	CORSOrigins    []string
	LogLevel       string
	InsecureSecret bool
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8000"),
		DatabaseURL: fallback(os.Getenv("DATABASE_URL"), "sqlite://./sqlite_data/users.db"),
		JWTSecret:   fallback(os.Getenv("JWT_SECRET"), strings.TrimSpace(os.Getenv("SECRET_KEY"))),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "barbershop-user-service"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		LogLevel:    strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DefaultSecret
		cfg.InsecureSecret = true
	}

	minutes := fallback(os.Getenv("JWT_TTL_MINUTES"), "30")
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 30 * time.Minute
	}

	cost := fallback(os.Getenv("BCRYPT_COST"), strconv.Itoa(bcrypt.DefaultCost))
	parsed, err := strconv.Atoi(cost)
	if err != nil || parsed < bcrypt.MinCost || parsed > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be an integer between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	cfg.BcryptCost = parsed

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
