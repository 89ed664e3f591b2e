package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/openpinpoint/analytics-service/internal/indexer"
)

// Store backends selectable via ENDPOINT_STORE.
const (
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config contains runtime configuration required by the service. Everything
// is environment-supplied and has a safe default except DB_URL, which is only
// required for the postgres backend.
type Config struct {
	ListenAddr        string
	ElasticsearchHost string
	IndexRotation     indexer.RotationPolicy
	StoreBackend      string
	BoltPath          string
	DBURL             string
	IndexTimeout      time.Duration
	DebugEvents       bool
	LogLevel          string
}

// Load reads values from environment variables.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:        envOr("LISTEN_ADDR", ":3000"),
		ElasticsearchHost: envOr("ELASTICSEARCH_HOST", "http://elasticsearch:9200"),
		StoreBackend:      envOr("ENDPOINT_STORE", StoreBolt),
		BoltPath:          envOr("BOLT_PATH", "/tmp/endpoints.db"),
		DBURL:             strings.TrimSpace(os.Getenv("DB_URL")),
		LogLevel:          envOr("LOG_LEVEL", "info"),
	}

	rotation, err := indexer.ParseRotationPolicy(envOr("INDEX_ROTATION", "none"))
	if err != nil {
		return Config{}, err
	}
	cfg.IndexRotation = rotation

	cfg.IndexTimeout = 10 * time.Second
	if raw := strings.TrimSpace(os.Getenv("ES_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, errors.Errorf(`ES_TIMEOUT must be a positive duration such as "10s", got %q`, raw)
		}
		cfg.IndexTimeout = d
	}

	if raw := strings.TrimSpace(os.Getenv("DEBUG_EVENTS")); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, errors.Errorf("DEBUG_EVENTS must be a boolean, got %q", raw)
		}
		cfg.DebugEvents = debug
	}

	switch cfg.StoreBackend {
	case StoreBolt, StoreMemory:
	case StorePostgres:
		if cfg.DBURL == "" {
			return Config{}, errors.New("DB_URL required when ENDPOINT_STORE=postgres")
		}
	default:
		return Config{}, errors.Errorf("unknown ENDPOINT_STORE %q (want bolt, postgres or memory)", cfg.StoreBackend)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
