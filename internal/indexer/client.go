package indexer

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// mappingJSON is the index schema declared before any document write.
//
//go:embed mapping.json
var mappingJSON []byte

// Mapping returns the analytics index schema document.
func Mapping() json.RawMessage {
	return json.RawMessage(mappingJSON)
}

// BackendError is a non-2xx reply from the search backend, carrying the raw
// error body for logging. It is returned as a value; callers log and move on,
// there is no retry.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// maxErrorBody bounds how much of an error reply is kept for logging.
const maxErrorBody = 4 << 10

// Client forwards schema definitions and records to the search backend over
// its plain HTTP document API. Every call is a single best-effort attempt
// with a bounded timeout.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// PutSchema declares (or re-declares) the index schema. Re-applying the same
// schema is a success: an already-existing index is not an error.
func (c *Client) PutSchema(ctx context.Context, index string, doc interface{}) error {
	err := c.send(ctx, http.MethodPut, index, doc)
	var be *BackendError
	if errors.As(err, &be) && strings.Contains(be.Body, "resource_already_exists_exception") {
		return nil
	}
	return err
}

// PutDocument forwards one analytics record to the index.
func (c *Client) PutDocument(ctx context.Context, index string, doc interface{}) error {
	return c.send(ctx, http.MethodPost, index+"/_doc/", doc)
}

func (c *Client) send(ctx context.Context, method, path string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal document")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	rsp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(rsp.Body, maxErrorBody))
		return &BackendError{StatusCode: rsp.StatusCode, Body: string(detail)}
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, rsp.Body)
	return nil
}
