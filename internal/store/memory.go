package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/openpinpoint/analytics-service/internal/models"
)

// MemoryStore keeps endpoint records in process memory. It backs tests and
// the zero-setup dev mode; nothing survives a restart.
//
// Records are stored as marshaled JSON so readers never share maps with
// writers. Upserts serialize per client id through a keyed mutex.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string][]byte
	locks    map[string]*sync.Mutex
	settings settings
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &MemoryStore{
		docs:     map[string][]byte{},
		locks:    map[string]*sync.Mutex{},
		settings: s,
	}
}

// keyLock returns the mutex serializing writes for one id, creating it on
// first use.
func (m *MemoryStore) keyLock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

func (m *MemoryStore) Get(_ context.Context, id string) models.Endpoint {
	m.mu.RLock()
	raw, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return models.Endpoint{}
	}
	var ep models.Endpoint
	if err := json.Unmarshal(raw, &ep); err != nil {
		return models.Endpoint{}
	}
	return ep
}

func (m *MemoryStore) Upsert(ctx context.Context, id string, incoming models.Endpoint) bool {
	l := m.keyLock(id)
	l.Lock()
	defer l.Unlock()

	current := m.Get(ctx, id)
	next, err := applyUpsert(current, incoming, id, m.settings.now(), m.settings.cohort)
	if err != nil {
		return false
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return false
	}

	m.mu.Lock()
	m.docs[id] = raw
	m.mu.Unlock()
	return true
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() {}
