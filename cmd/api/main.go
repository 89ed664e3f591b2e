package main

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/openpinpoint/analytics-service/internal/config"
	"github.com/openpinpoint/analytics-service/internal/httpserver"
	"github.com/openpinpoint/analytics-service/internal/indexer"
	"github.com/openpinpoint/analytics-service/internal/pipeline"
	"github.com/openpinpoint/analytics-service/internal/store"
)

// main boots the service: config → logger → endpoint store → indexing client
// → pipeline → HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	st, err := newStore(cfg, logger)
	if err != nil {
		level.Error(logger).Log("msg", "endpoint store init failed", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer st.Close()

	client := indexer.NewClient(cfg.ElasticsearchHost, cfg.IndexTimeout)
	namer := indexer.NewNamer(cfg.IndexRotation)

	p := pipeline.New(st, client, namer,
		log.With(logger, "component", "pipeline"),
		pipeline.WithDebugEvents(cfg.DebugEvents))
	// Drain in-flight batch work before the store closes.
	defer p.Close()

	router := httpserver.NewRouter(st, p)

	level.Info(logger).Log("msg", "server started", "addr", cfg.ListenAddr,
		"store", cfg.StoreBackend, "elasticsearch", cfg.ElasticsearchHost)
	if err := router.Run(cfg.ListenAddr); err != nil {
		level.Error(logger).Log("msg", "server exited", "err", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger with the configured level filter.
func newLogger(lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, level.Allow(level.ParseDefault(lvl, level.InfoValue())))
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

// newStore selects the endpoint store backend from configuration.
func newStore(cfg config.Config, logger log.Logger) (store.EndpointStore, error) {
	storeLogger := log.With(logger, "component", "store")
	switch cfg.StoreBackend {
	case config.StorePostgres:
		st, err := store.NewPostgresStore(cfg.DBURL, storeLogger)
		if err != nil {
			return nil, err
		}
		// Ensure required tables exist so `docker compose up --build` is enough.
		if err := st.EnsureSchema(); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	default:
		return store.NewBoltStore(cfg.BoltPath, storeLogger)
	}
}
