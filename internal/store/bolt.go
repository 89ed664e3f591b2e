package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/openpinpoint/analytics-service/internal/models"
)

var endpointsBucket = []byte("endpoints")

// BoltStore is the default endpoint store: a single-file embedded database,
// one bucket, one key per client id. bbolt runs one writer at a time, so the
// whole read-merge-write of an upsert happens inside a single Update
// transaction and concurrent upserts for the same id cannot lose fields.
type BoltStore struct {
	db       *bolt.DB
	logger   log.Logger
	settings settings
}

// NewBoltStore opens (creating if needed) the database file at path.
func NewBoltStore(path string, logger log.Logger, opts ...Option) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open endpoint database %s", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(endpointsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create endpoints bucket")
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &BoltStore{db: db, logger: logger, settings: s}, nil
}

func (b *BoltStore) Get(_ context.Context, id string) models.Endpoint {
	var ep models.Endpoint
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(endpointsBucket).Get([]byte(id))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &ep)
	})
	if err != nil {
		level.Error(b.logger).Log("msg", "endpoint read failed", "id", id, "err", err)
		return models.Endpoint{}
	}
	return ep
}

func (b *BoltStore) Upsert(_ context.Context, id string, incoming models.Endpoint) bool {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(endpointsBucket)

		var current models.Endpoint
		if raw := bucket.Get([]byte(id)); raw != nil {
			if err := json.Unmarshal(raw, &current); err != nil {
				// Unreadable stored value: treat as absent rather than fail
				// the write, matching Get's behavior.
				level.Warn(b.logger).Log("msg", "stored endpoint unreadable, replacing", "id", id, "err", err)
				current = models.Endpoint{}
			}
		}

		next, err := applyUpsert(current, incoming, id, b.settings.now(), b.settings.cohort)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return errors.Wrap(err, "marshal endpoint")
		}
		return bucket.Put([]byte(id), raw)
	})
	if err != nil {
		level.Error(b.logger).Log("msg", "endpoint upsert failed", "id", id, "err", err)
		return false
	}
	return true
}

func (b *BoltStore) Ping(_ context.Context) error {
	return b.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(endpointsBucket) == nil {
			return errors.New("endpoints bucket missing")
		}
		return nil
	})
}

func (b *BoltStore) Close() {
	if err := b.db.Close(); err != nil {
		level.Error(b.logger).Log("msg", "closing endpoint database failed", "err", err)
	}
}
