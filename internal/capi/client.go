package capi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultGraphAPIBase    = "https://graph.facebook.com"
	DefaultGraphAPIVersion = "v21.0"
)

var tracer = otel.Tracer("leadfunnel.internal.capi")

var (
	// ErrMissingCredentials is returned when the pixel id or access token is empty.
	ErrMissingCredentials = errors.New("capi: pixel id and access token required")
	// ErrInvalidResponse is returned when a 2xx reply carries no JSON body.
	ErrInvalidResponse = errors.New("capi: response is not JSON")
)

// Response is the Graph API reply. Body is always valid JSON.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// APIError is returned when the Graph API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("capi: API error status %d: %s", e.StatusCode, string(e.Body))
}

// Client posts server events to the Conversions API.
type Client struct {
	pixelID     string
	accessToken string
	baseURL     string
	version     string
	httpClient  *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the Graph API base URL (useful for testing).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

// WithVersion overrides the Graph API version segment.
func WithVersion(version string) Option {
	return func(c *Client) {
		if version = strings.Trim(strings.TrimSpace(version), "/"); version != "" {
			c.version = version
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a Conversions API client for one pixel. The client sets no
// timeout of its own; callers bound the call through ctx.
func NewClient(pixelID, accessToken string, opts ...Option) *Client {
	c := &Client{
		pixelID:     pixelID,
		accessToken: accessToken,
		baseURL:     DefaultGraphAPIBase,
		version:     DefaultGraphAPIVersion,
		httpClient:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendEvents posts payload to /{version}/{pixel_id}/events. A non-2xx reply
// returns both the response and an *APIError.
func (c *Client) SendEvents(ctx context.Context, payload any) (*Response, error) {
	if c.pixelID == "" || c.accessToken == "" {
		return nil, ErrMissingCredentials
	}

	ctx, span := tracer.Start(ctx, "capi.send_events")
	defer span.End()
	span.SetAttributes(attribute.String("capi.pixel_id", c.pixelID))

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("capi: marshal events: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.eventsURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("capi: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = redactURL(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, fmt.Errorf("capi: send events: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("capi: read response: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Body: asJSON(respBody)}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: out.Body}
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, "non-2xx")
		return out, apiErr
	}
	if !json.Valid(bytes.TrimSpace(respBody)) {
		span.SetStatus(codes.Error, "invalid body")
		return nil, fmt.Errorf("%w (status %d)", ErrInvalidResponse, resp.StatusCode)
	}
	return out, nil
}

// redactURL strips the query, and with it the access token, from transport
// errors so they are safe to log.
func redactURL(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	redacted := *urlErr
	if u, perr := url.Parse(urlErr.URL); perr == nil {
		u.RawQuery = ""
		redacted.URL = u.String()
	} else {
		redacted.URL = "[redacted]"
	}
	return &redacted
}

func (c *Client) eventsURL() string {
	q := url.Values{}
	q.Set("access_token", c.accessToken)
	return fmt.Sprintf("%s/%s/%s/events?%s", c.baseURL, c.version, url.PathEscape(c.pixelID), q.Encode())
}

// asJSON keeps valid JSON as-is and wraps anything else as a JSON string.
func asJSON(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(trimmed))
	return json.RawMessage(quoted)
}
