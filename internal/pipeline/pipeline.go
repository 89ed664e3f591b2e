package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/openpinpoint/analytics-service/internal/indexer"
	"github.com/openpinpoint/analytics-service/internal/models"
	"github.com/openpinpoint/analytics-service/internal/store"
)

// Forwarder is the slice of the indexing client the pipeline needs.
type Forwarder interface {
	PutSchema(ctx context.Context, index string, doc interface{}) error
	PutDocument(ctx context.Context, index string, doc interface{}) error
}

// Pipeline turns acknowledged batches into endpoint upserts and forwarded
// analytics records. All of its work runs after the HTTP response has been
// sent; nothing it does can fail a batch.
type Pipeline struct {
	store  store.EndpointStore
	client Forwarder
	namer  indexer.Namer
	logger log.Logger

	now         func() time.Time
	debugEvents bool

	wg sync.WaitGroup

	// declared remembers index names whose mapping has been applied, so the
	// schema is re-declared only when rotation produces a new name or a
	// previous declaration failed.
	mu       sync.Mutex
	declared map[string]bool
}

// Option customizes a pipeline at construction time.
type Option func(*Pipeline)

// WithClock replaces the ingestion clock (arrival timestamps, index naming).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithDebugEvents logs every raw event before it is forwarded.
func WithDebugEvents(enabled bool) Option {
	return func(p *Pipeline) { p.debugEvents = enabled }
}

func New(st store.EndpointStore, client Forwarder, namer indexer.Namer, logger log.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    st,
		client:   client,
		namer:    namer,
		logger:   logger,
		now:      time.Now,
		declared: map[string]bool{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dispatch schedules every item of the batch and returns immediately. Items
// are processed concurrently with no ordering guarantees between them. The
// returned channel closes once every item has been handled; the HTTP path
// discards it, tests and shutdown hooks wait on it.
func (p *Pipeline) Dispatch(appID string, batch map[string]models.BatchItem) <-chan struct{} {
	done := make(chan struct{})

	var batchWG sync.WaitGroup
	for cid, item := range batch {
		batchWG.Add(1)
		p.wg.Add(1)
		go func(cid string, item models.BatchItem) {
			defer batchWG.Done()
			defer p.wg.Done()
			p.processItem(context.Background(), appID, cid, item)
		}(cid, item)
	}
	go func() {
		batchWG.Wait()
		close(done)
	}()
	return done
}

// processItem reconciles one client's endpoint and forwards its events.
//
// The upsert happens before the snapshot read; the snapshot is then shared by
// every event in the item, so all of them carry identical device data even if
// another write lands mid-item. A failed upsert does not abort the item: the
// events proceed with whatever was stored before, or an empty snapshot.
func (p *Pipeline) processItem(ctx context.Context, appID, cid string, item models.BatchItem) {
	ep := item.Endpoint
	ep.ApplicationId = appID
	if ok := p.store.Upsert(ctx, cid, ep); !ok {
		level.Warn(p.logger).Log("msg", "endpoint upsert failed, continuing with stored snapshot", "client_id", cid)
	}
	snapshot := p.store.Get(ctx, cid)

	index := p.namer.Name(p.now())
	p.ensureSchema(ctx, index)

	for eid, event := range item.Events {
		record := Transform(appID, event, snapshot, p.now())
		if p.debugEvents {
			level.Debug(p.logger).Log("msg", "forwarding event",
				"client_id", cid, "event_id", eid, "event_type", record.EventType, "index", index)
		}
		if err := p.client.PutDocument(ctx, index, record); err != nil {
			level.Error(p.logger).Log("msg", "record forward failed, dropped",
				"client_id", cid, "event_id", eid, "index", index, "err", err)
		}
	}
}

func (p *Pipeline) ensureSchema(ctx context.Context, index string) {
	p.mu.Lock()
	already := p.declared[index]
	p.mu.Unlock()
	if already {
		return
	}

	if err := p.client.PutSchema(ctx, index, indexer.Mapping()); err != nil {
		// Leave the index unmarked; the next batch tries again.
		level.Error(p.logger).Log("msg", "mapping declaration failed", "index", index, "err", err)
		return
	}
	p.mu.Lock()
	p.declared[index] = true
	p.mu.Unlock()
}

// Close waits for all in-flight items. Acknowledged work is lost if the
// process dies before this returns; there is no recovery log.
func (p *Pipeline) Close() {
	p.wg.Wait()
}
