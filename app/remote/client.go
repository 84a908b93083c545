// Package remote implements the client of the spreadsheet-backed job store. The store speaks an
// action-tagged JSON protocol on a single endpoint: GET for read, POST for create, update and delete.
// Rows are addressed by their 1-based position, row 1 holds the header.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/jobtrack/app/enums"
	"github.com/umputun/jobtrack/app/job"
)

// MinRowIndex is the first data row, row 1 is the header
const MinRowIndex = 2

const maxResponseSize = 16 * 1024 * 1024

var (
	// ErrTransport is returned when the endpoint can't be reached or doesn't answer with a valid response
	ErrTransport = errors.New("transport error")
	// ErrBackend matches BackendError, the endpoint answered with success=false
	ErrBackend = errors.New("backend error")
	// ErrInvalidTarget is returned for update and delete of a row index below MinRowIndex
	ErrInvalidTarget = errors.New("invalid target row")
)

// BackendError carries the message of a rejected request
type BackendError struct {
	Action  enums.Action
	Message string
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("%s rejected: %s", e.Action, msg)
}

// Is makes errors.Is(err, ErrBackend) match
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

// Client talks to a single remote endpoint. Each operation is one HTTP request, failures are not retried.
type Client struct {
	endpoint string
	http     *http.Client
	newID    func() string
}

// New makes a client for the endpoint. Nil httpClient means http.DefaultClient.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, http: httpClient, newID: job.NewID}
}

// Endpoint returns the url the client talks to
func (c *Client) Endpoint() string { return c.endpoint }

// Read returns all rows of the collection. Every returned job gets a freshly generated id,
// the same row gets a different id on the next read.
func (c *Client) Read(ctx context.Context, collection string) ([]job.Job, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint %q: %w", ErrTransport, c.endpoint, err)
	}
	q := u.Query()
	q.Set("action", enums.ActionRead.String())
	q.Set("sheet", collection)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrTransport, err)
	}

	resp, err := c.do(req, enums.ActionRead)
	if err != nil {
		return nil, err
	}

	jobs := make([]job.Job, 0, len(resp.Data))
	for _, row := range resp.Data {
		if row.RowIndex < MinRowIndex {
			return nil, fmt.Errorf("%w: malformed read response, row index %d below %d", ErrTransport, row.RowIndex, MinRowIndex)
		}
		jobs = append(jobs, row.Job(c.newID()))
	}
	log.Printf("[DEBUG] read %d rows from %q", len(jobs), collection)
	return jobs, nil
}

// Create appends a row with the job fields. The new row index is not returned.
func (c *Client) Create(ctx context.Context, collection string, j job.Job) error {
	return c.post(ctx, Request{Action: enums.ActionCreate, Sheet: collection, Fields: fieldsFromJob(j)})
}

// Update overwrites the whole row at rowIndex with the job fields
func (c *Client) Update(ctx context.Context, collection string, rowIndex int, j job.Job) error {
	if rowIndex < MinRowIndex {
		return fmt.Errorf("%w: update of row %d", ErrInvalidTarget, rowIndex)
	}
	return c.post(ctx, Request{Action: enums.ActionUpdate, Sheet: collection, RowIndex: rowIndex, Fields: fieldsFromJob(j)})
}

// Delete removes the row at rowIndex, rows below move up by one
func (c *Client) Delete(ctx context.Context, collection string, rowIndex int) error {
	if rowIndex < MinRowIndex {
		return fmt.Errorf("%w: delete of row %d", ErrInvalidTarget, rowIndex)
	}
	return c.post(ctx, Request{Action: enums.ActionDelete, Sheet: collection, RowIndex: rowIndex})
}

func (c *Client) post(ctx context.Context, body Request) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", body.Action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req, body.Action); err != nil {
		return err
	}
	log.Printf("[DEBUG] %s on %q done, row %d", body.Action, body.Sheet, body.RowIndex)
	return nil
}

// do sends the request and decodes the response envelope
func (c *Client) do(req *http.Request, action enums.Action) (*Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request failed: %w", ErrTransport, action, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("[WARN] failed to close response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s request, unexpected status code: %d", ErrTransport, action, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s response: %w", ErrTransport, action, err)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("%w: %s response too large, over %d bytes", ErrTransport, action, maxResponseSize)
	}

	var res Response
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: malformed %s response: %w", ErrTransport, action, err)
	}
	if !res.Success {
		return nil, &BackendError{Action: action, Message: res.Error}
	}
	return &res, nil
}
