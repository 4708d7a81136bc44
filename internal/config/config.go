package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             int
	DatabaseURL      string
	DBMaxConns       int
	JWTSecret        string
	DocumentDir      string
	AllowOverpayment bool
}

// Load reads the environment, with a .env file in the working directory as a
// fallback for values the environment does not set.
func Load() (Config, error) {
	fileValues := map[string]string{}
	if _, err := os.Stat(".env"); err == nil {
		fileValues, err = godotenv.Read(".env")
		if err != nil {
			return Config{}, fmt.Errorf("read .env: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat .env: %w", err)
	}

	lookup := func(key string) string {
		return firstNonEmpty(os.Getenv(key), fileValues[key])
	}

	cfg := Config{
		Port:        8080,
		DBMaxConns:  20,
		DocumentDir: "documents",
	}
	if portRaw := lookup("PORT"); portRaw != "" {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid PORT: %q", portRaw)
		}
		cfg.Port = port
	}

	cfg.DatabaseURL = lookup("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required (environment variable or .env)")
	}

	if raw := lookup("DB_MAX_CONNS"); raw != "" {
		maxConns, err := strconv.Atoi(raw)
		if err != nil || maxConns <= 0 {
			return Config{}, fmt.Errorf("invalid DB_MAX_CONNS: %q", raw)
		}
		cfg.DBMaxConns = maxConns
	}

	cfg.JWTSecret = lookup("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required (environment variable or .env)")
	}

	if dir := lookup("DOCUMENT_DIR"); dir != "" {
		cfg.DocumentDir = dir
	}

	if raw := lookup("ALLOW_OVERPAYMENT"); raw != "" {
		allow, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ALLOW_OVERPAYMENT: %q", raw)
		}
		cfg.AllowOverpayment = allow
	}

	return cfg, nil
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}
