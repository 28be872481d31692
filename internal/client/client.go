// Package client is a typed Go client for the incident RPC API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/go-resty/resty/v2"
)

const (
	basePath       = "/api/v1/incident"
	defaultTimeout = 30 * time.Second
)

// Client calls the incident procedures. Failed calls are never retried.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger for failed calls.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a client for the service at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	o := options{timeout: defaultTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(baseURL, "/") + basePath).
		SetTimeout(o.timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{http: rc, logger: o.logger}
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("incident api: %d %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("incident api: %d %s", e.StatusCode, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// List fetches one page of incidents.
func (c *Client) List(ctx context.Context, req incidents.ListRequest) (*incidents.ListResult, error) {
	var result incidents.ListResult
	if err := c.post(ctx, "/getAllWithPaginationAndFilter", req, &result); err != nil {
		return nil, err
	}
	if result.Data == nil {
		result.Data = []domain.Incident{}
	}
	return &result, nil
}

// Create stores a new incident and returns the persisted row.
func (c *Client) Create(ctx context.Context, fields incidents.IncidentFields) (*domain.Incident, error) {
	var out dataEnvelope[[]domain.Incident]
	if err := c.post(ctx, "/createIncident", incidents.CreateIncidentRequest{IncidentFields: fields}, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, errors.New("createIncident: empty response")
	}
	return &out.Data[0], nil
}

// Update replaces the incident with the given id. It returns nil without
// error when the id does not exist.
func (c *Client) Update(ctx context.Context, id string, fields incidents.IncidentFields) (*domain.Incident, error) {
	var out dataEnvelope[[]domain.Incident]
	req := incidents.UpdateIncidentRequest{ID: id, IncidentFields: fields}
	if err := c.post(ctx, "/updateIncident", req, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	return &out.Data[0], nil
}

// Delete removes the incident and returns the number of rows deleted.
func (c *Client) Delete(ctx context.Context, id string) (int64, error) {
	var out dataEnvelope[incidents.DeleteResult]
	if err := c.post(ctx, "/deleteIncident", incidents.IDRequest{ID: id}, &out); err != nil {
		return 0, err
	}
	return out.Data.Deleted, nil
}

// Get fetches one incident, or nil when it does not exist.
func (c *Client) Get(ctx context.Context, id string) (*domain.Incident, error) {
	var out dataEnvelope[*domain.Incident]
	if err := c.post(ctx, "/getIncident", incidents.IDRequest{ID: id}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Options fetches the enumerations used by filter and edit forms.
func (c *Client) Options(ctx context.Context) (*incidents.OptionsResponse, error) {
	var out dataEnvelope[incidents.OptionsResponse]
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorEnvelope{}).
		Get("/options")
	if err := c.check("/options", resp, err); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Export downloads the XLSX workbook for the request's filters and sort.
func (c *Client) Export(ctx context.Context, req incidents.ListRequest) ([]byte, error) {
	q := req.Values()
	q.Del("page")
	q.Del("pageSize")

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q).
		SetHeader("Accept", incidents.ExportContentType).
		SetError(&errorEnvelope{}).
		Get("/export")
	if err := c.check("/export", resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(result).
		SetError(&errorEnvelope{}).
		Post(path)
	return c.check(path, resp, err)
}

func (c *Client) check(path string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Error("incident api call failed", "path", path, "error", err)
		return fmt.Errorf("%s: %w", strings.TrimPrefix(path, "/"), err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	if env, ok := resp.Error().(*errorEnvelope); ok && env.Error.Message != "" {
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
	}
	c.logger.Warn("incident api returned error",
		"path", path,
		"status", apiErr.StatusCode,
		"message", apiErr.Message,
	)
	return apiErr
}
