package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/openpinpoint/analytics-service/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore backs the endpoint store with a Postgres document table, for
// deployments where the endpoint data must outlive the host. The upsert's
// read-modify-write runs inside a transaction with SELECT ... FOR UPDATE, so
// concurrent upserts for the same id queue up instead of losing updates.
type PostgresStore struct {
	pool     *pgxpool.Pool
	logger   log.Logger
	settings settings
}

// NewPostgresStore creates a connection pool and fails fast if the database
// is unreachable.
func NewPostgresStore(dbURL string, logger log.Logger, opts ...Option) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &PostgresStore{pool: pool, logger: logger, settings: s}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, id string) models.Endpoint {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT doc FROM endpoints WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Endpoint{}
	}
	if err != nil {
		level.Error(p.logger).Log("msg", "endpoint read failed", "id", id, "err", err)
		return models.Endpoint{}
	}

	var ep models.Endpoint
	if err := json.Unmarshal(raw, &ep); err != nil {
		level.Error(p.logger).Log("msg", "stored endpoint unreadable", "id", id, "err", err)
		return models.Endpoint{}
	}
	return ep
}

func (p *PostgresStore) Upsert(ctx context.Context, id string, incoming models.Endpoint) bool {
	err := p.upsert(ctx, id, incoming)
	if err != nil {
		level.Error(p.logger).Log("msg", "endpoint upsert failed", "id", id, "err", err)
		return false
	}
	return true
}

func (p *PostgresStore) upsert(ctx context.Context, id string, incoming models.Endpoint) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Row lock (when the row exists) keeps a concurrent upsert for the same
	// id from reading the pre-merge document.
	var current models.Endpoint
	var raw []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM endpoints WHERE id=$1 FOR UPDATE`, id).Scan(&raw)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// First write for this id.
	case err != nil:
		return errors.Wrap(err, "read current")
	default:
		if err := json.Unmarshal(raw, &current); err != nil {
			level.Warn(p.logger).Log("msg", "stored endpoint unreadable, replacing", "id", id, "err", err)
			current = models.Endpoint{}
		}
	}

	next, err := applyUpsert(current, incoming, id, p.settings.now(), p.settings.cohort)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(next)
	if err != nil {
		return errors.Wrap(err, "marshal endpoint")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO endpoints(id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc
	`, id, doc)
	if err != nil {
		return errors.Wrap(err, "write endpoint")
	}
	return errors.Wrap(tx.Commit(ctx), "commit")
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}
