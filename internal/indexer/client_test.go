package indexer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

// recordingBackend captures requests and replies with a fixed status/body.
type recordingBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	reply    string
}

func (b *recordingBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
	b.mu.Unlock()
	w.WriteHeader(b.status)
	_, _ = w.Write([]byte(b.reply))
}

func (b *recordingBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.requests)
	return b.requests[len(b.requests)-1]
}

func newTestClient(t *testing.T, status int, reply string) (*Client, *recordingBackend) {
	t.Helper()
	backend := &recordingBackend{status: status, reply: reply}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second), backend
}

func TestPutDocument(t *testing.T) {
	client, backend := newTestClient(t, http.StatusCreated, `{"result":"created"}`)

	err := client.PutDocument(context.Background(), "analytics-2024-03-07", map[string]string{"event_type": "open"})
	require.NoError(t, err)

	req := backend.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/analytics-2024-03-07/_doc/", req.Path)
	assert.JSONEq(t, `{"event_type":"open"}`, string(req.Body))
}

func TestPutSchema(t *testing.T) {
	client, backend := newTestClient(t, http.StatusOK, `{"acknowledged":true}`)

	err := client.PutSchema(context.Background(), "analytics", Mapping())
	require.NoError(t, err)

	req := backend.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/analytics", req.Path)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(req.Body, &doc))
	assert.Contains(t, doc, "mappings")
}

func TestPutSchemaAlreadyExistsIsSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.StatusBadRequest,
		`{"error":{"type":"resource_already_exists_exception"}}`)

	assert.NoError(t, client.PutSchema(context.Background(), "analytics", Mapping()))
}

func TestBackendErrorCarriesDetail(t *testing.T) {
	client, _ := newTestClient(t, http.StatusBadRequest, `{"error":{"type":"mapper_parsing_exception"}}`)

	err := client.PutDocument(context.Background(), "analytics", map[string]string{})
	require.Error(t, err)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusBadRequest, be.StatusCode)
	assert.Contains(t, be.Body, "mapper_parsing_exception")
}

func TestUnreachableBackendReturnsError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond)
	assert.Error(t, client.PutDocument(context.Background(), "analytics", map[string]string{}))
}
