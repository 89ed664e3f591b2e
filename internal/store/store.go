package store

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/openpinpoint/analytics-service/internal/models"
)

// EndpointStore is the durable per-client persistence layer for endpoint
// records. Implementations must make Upsert's read-modify-write atomic per
// id: two concurrent upserts for the same id may interleave in either order
// but must never lose each other's fields.
type EndpointStore interface {
	// Get returns the stored record for id, or the zero record when the id is
	// unknown or the read fails. Read failures are logged, never surfaced;
	// callers cannot tell "not found" from "unreadable".
	Get(ctx context.Context, id string) models.Endpoint

	// Upsert merges incoming into the stored record for id. First write for
	// an id stamps Id, CreationDate and CohortId; every write stamps
	// EffectiveDate. Returns false when persistence failed; the failure is
	// logged and must not abort the caller's batch.
	Upsert(ctx context.Context, id string, incoming models.Endpoint) bool

	// Ping is used by the readiness endpoint to validate the backend.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close()
}

// settings are the injectable knobs shared by every backend: the clock that
// stamps dates and the source that assigns cohorts. Tests pin both.
type settings struct {
	now    func() time.Time
	cohort func() int
}

func defaultSettings() settings {
	return settings{
		now:    time.Now,
		cohort: NewCohortSource(time.Now().UnixNano()),
	}
}

// Option customizes a store at construction time.
type Option func(*settings)

// WithClock replaces the wall clock used for CreationDate/EffectiveDate.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithCohortSource replaces the cohort assigner.
func WithCohortSource(cohort func() int) Option {
	return func(s *settings) { s.cohort = cohort }
}

// NewCohortSource returns a cohort assigner drawing uniformly from [0,100).
// Seeding it makes cohort assignment reproducible in tests.
func NewCohortSource(seed int64) func() int {
	r := rand.New(rand.NewSource(seed))
	var mu sync.Mutex
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		return r.Intn(100)
	}
}
