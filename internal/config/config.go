package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"layout-proxy/internal/layout"
)

// Config holds the service settings read from the environment.
type Config struct {
	Port string

	LayoutServiceURL  string
	LayoutServicePath string
	GraphQLEndpoint   string
	APIKey            string
	UpstreamTimeout   time.Duration
	ForwardHeaders    []string

	RulesFile   string
	FieldPolicy layout.FieldPolicy
	SkipApplied bool

	CacheEnabled bool
	CacheTTL     time.Duration
	DBDriver     string
	DBDSN        string

	LogLevel string
	GinMode  string
}

// Load reads a .env file when present (without overriding variables already
// set) and builds the configuration from the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		LayoutServiceURL:  getEnv("LAYOUT_SERVICE_URL", "https://xmcloudcm.localhost"),
		LayoutServicePath: getEnv("LAYOUT_SERVICE_PATH", "/sitecore/api/layout/render/jss"),
		GraphQLEndpoint:   getEnv("GRAPHQL_ENDPOINT", "https://xmcloudcm.localhost/sitecore/api/graph/edge"),
		APIKey:            getEnv("SC_API_KEY", ""),
		ForwardHeaders:    splitList(getEnv("FORWARD_HEADERS", "")),
		RulesFile:         getEnv("RULES_FILE", "rules.yaml"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:             getEnv("DB_DSN", "file:layout-proxy.db?cache=shared"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		GinMode:           getEnv("GIN_MODE", "release"),
	}

	var err error
	if cfg.UpstreamTimeout, err = getDuration("UPSTREAM_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SkipApplied, err = getBool("SKIP_APPLIED", false); err != nil {
		return nil, err
	}
	if cfg.CacheEnabled, err = getBool("CACHE_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.FieldPolicy, err = layout.ParseFieldPolicy(getEnv("FIELD_POLICY", "patch")); err != nil {
		return nil, fmt.Errorf("FIELD_POLICY: %w", err)
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q (want sqlite or postgres)", cfg.DBDriver)
	}
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: duration must be positive, got %s", key, d)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q: %w", key, raw, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
