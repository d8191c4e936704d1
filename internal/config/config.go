package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendRod  = "rod"
	BackendHTTP = "http"
)

// Config is the process configuration: environment settings plus the site rules
type Config struct {
	SiteConfig string
	OutputDir  string
	Backend    string
	Headless   bool
	ChromeBin  string
	LogLevel   string

	Rules Rules
}

// LoadEnv reads a .env file into the environment when one exists.
// It reports whether a file was loaded; a missing file is not an error.
func LoadEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load builds the configuration from the environment and the site rules it points to
func Load() (*Config, error) {
	cfg := &Config{
		SiteConfig: os.Getenv("SITE_CONFIG"),
		OutputDir:  envOr("OUTPUT_DIR", "."),
		Backend:    strings.ToLower(envOr("BROWSER_BACKEND", BackendRod)),
		ChromeBin:  os.Getenv("CHROME_BIN"),
		LogLevel:   envOr("LOG_LEVEL", "info"),
		Headless:   true,
	}

	if raw := os.Getenv("HEADLESS"); raw != "" {
		headless, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid HEADLESS value %q: %w", raw, err)
		}
		cfg.Headless = headless
	}

	switch cfg.Backend {
	case BackendRod, BackendHTTP:
	default:
		return nil, fmt.Errorf("unknown BROWSER_BACKEND %q (expected %q or %q)", cfg.Backend, BackendRod, BackendHTTP)
	}

	rules, err := ReadRules(cfg.SiteConfig)
	if err != nil {
		return nil, err
	}
	cfg.Rules = rules

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
