// Package remote talks to the hosted table store over HTTP. The store is a
// black box with two logical tables: per-record invoice rows and a single
// roster row. Every payload crossing this boundary is an opaque sealed
// token; the remote never sees plaintext fields.
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
	"time"

	"github.com/acuellar/cfdivault/internal/common"
)

// ErrUnavailable reports that the remote store could not be reached or
// answered with an error. Callers downgrade to local-only mode.
var ErrUnavailable = errors.New("remote store unavailable")

// RosterKey is the sentinel id of the single roster row.
const RosterKey = "usuarios_sistema"

const (
	invoicesTable = "facturas_cfdi"
	rosterTable   = "usuarios_cfdi"
)

// InvoiceRow is one encrypted invoice record as stored remotely.
type InvoiceRow struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Payload   string `json:"datos_encriptados"`
	UpdatedAt string `json:"ultima_actualizacion"`
}

type rosterRow struct {
	ID        string `json:"id"`
	Payload   string `json:"datos_encriptados"`
	UpdatedAt string `json:"ultima_actualizacion"`
}

// Client is the remote store surface used by the sync coordinator.
type Client interface {
	// Probe performs a lightweight read against the roster table.
	// A nil return means the remote is reachable for this cycle.
	Probe(ctx context.Context) error
	ListInvoices(ctx context.Context, userID string) ([]InvoiceRow, error)
	// UpsertInvoice writes one row with merge-on-conflict semantics:
	// the last write for a given id replaces the prior value.
	UpsertInvoice(ctx context.Context, row InvoiceRow) error
	DeleteInvoice(ctx context.Context, id string) error
	// GetRoster returns the sealed roster blob, or common.ErrNotFound when
	// the sentinel row does not exist yet.
	GetRoster(ctx context.Context) (string, error)
	UpsertRoster(ctx context.Context, payload string) error
}

// HTTPClient implements Client against a PostgREST-style endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client

	// test seam for row timestamps
	now func() time.Time
}

// NewHTTPClient builds a client for the store at baseURL authenticating with
// apiKey. A zero timeout disables the request deadline.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "resolution=merge-duplicates")
	}
	return req, nil
}

func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnavailable, resp.Status, string(b))
	}
	return b, nil
}

func (c *HTTPClient) Probe(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/rest/v1/"+rosterTable+"?limit=1", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	_, err = c.do(req)
	return err
}

func (c *HTTPClient) ListInvoices(ctx context.Context, userID string) ([]InvoiceRow, error) {
	path := "/rest/v1/" + invoicesTable + "?user_id=eq." + url.QueryEscape(userID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	b, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var rows []InvoiceRow
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("%w: decoding rows: %v", ErrUnavailable, err)
	}
	return rows, nil
}

func (c *HTTPClient) UpsertInvoice(ctx context.Context, row InvoiceRow) error {
	if row.UpdatedAt == "" {
		row.UpdatedAt = c.now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/rest/v1/"+invoicesTable, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	_, err = c.do(req)
	return err
}

func (c *HTTPClient) DeleteInvoice(ctx context.Context, id string) error {
	path := "/rest/v1/" + invoicesTable + "?id=eq." + url.QueryEscape(id)
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	_, err = c.do(req)
	return err
}

func (c *HTTPClient) GetRoster(ctx context.Context) (string, error) {
	path := "/rest/v1/" + rosterTable + "?id=eq." + RosterKey
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	b, err := c.do(req)
	if err != nil {
		return "", err
	}

	var rows []rosterRow
	if err := json.Unmarshal(b, &rows); err != nil {
		return "", fmt.Errorf("%w: decoding roster: %v", ErrUnavailable, err)
	}
	if len(rows) == 0 || rows[0].Payload == "" {
		return "", common.ErrNotFound
	}
	return rows[0].Payload, nil
}

func (c *HTTPClient) UpsertRoster(ctx context.Context, payload string) error {
	row := rosterRow{
		ID:        RosterKey,
		Payload:   payload,
		UpdatedAt: c.now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/rest/v1/"+rosterTable, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	_, err = c.do(req)
	return err
}
