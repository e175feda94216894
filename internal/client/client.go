// Package client talks to the contacts REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/connex/contact-manager/internal/core/domain"
)

const (
	contactsPath         = "/api/contacts"
	headerIdempotencyKey = "Idempotency-Key"
	errorBodyReadLimit   = 64 << 10
	createAttempts       = 2
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// Client wraps the contacts endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	newKey     func() string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// New builds a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		newKey:     uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ListResult is one page of the list endpoint.
type ListResult struct {
	Contacts    []*domain.Contact `json:"contacts"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
}

type contactEnvelope struct {
	Message string          `json:"message"`
	Contact *domain.Contact `json:"contact"`
}

type eventsEnvelope struct {
	Events []*domain.ContactEvent `json:"events"`
}

type errorEnvelope struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

// List fetches every contact. The server returns the full collection on any
// valid page, so page 1 is enough.
func (c *Client) List(ctx context.Context) (*ListResult, error) {
	var out ListResult
	q := url.Values{"page": []string{strconv.Itoa(1)}}
	if err := c.do(ctx, http.MethodGet, contactsPath+"?"+q.Encode(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new contact. Transport failures are retried once with the
// same idempotency key so a lost response never duplicates the contact.
func (c *Client) Create(ctx context.Context, fields domain.ContactFields) (*domain.Contact, error) {
	headers := map[string]string{headerIdempotencyKey: c.newKey()}

	var (
		out contactEnvelope
		err error
	)
	for attempt := 0; attempt < createAttempts; attempt++ {
		err = c.do(ctx, http.MethodPost, contactsPath, headers, fields, &out)
		var ae *APIError
		if err == nil || errors.As(err, &ae) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return out.Contact, nil
}

// Get fetches a single contact.
func (c *Client) Get(ctx context.Context, id string) (*domain.Contact, error) {
	var out contactEnvelope
	if err := c.do(ctx, http.MethodGet, contactPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Contact, nil
}

// Update replaces the six fields of a contact.
func (c *Client) Update(ctx context.Context, id string, fields domain.ContactFields) (*domain.Contact, error) {
	var out contactEnvelope
	if err := c.do(ctx, http.MethodPatch, contactPath(id), nil, fields, &out); err != nil {
		return nil, err
	}
	return out.Contact, nil
}

// Delete removes a contact.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, contactPath(id), nil, nil, nil)
}

// History fetches the audit trail of a contact.
func (c *Client) History(ctx context.Context, id string) ([]*domain.ContactEvent, error) {
	var out eventsEnvelope
	if err := c.do(ctx, http.MethodGet, contactPath(id)+"/events", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func contactPath(id string) string {
	return contactsPath + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err == nil {
		apiErr.Message = env.Message
		apiErr.Fields = env.Fields
		if env.Error != "" {
			apiErr.Message = env.Message + ": " + env.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
