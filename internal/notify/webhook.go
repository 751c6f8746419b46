package notify

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
)

var tracer = otel.Tracer("leadfunnel.internal.notify")

// RelayResult describes one webhook delivery attempt. Err is informational:
// callers log it and carry on.
type RelayResult struct {
	Skipped    bool
	StatusCode int
	Err        error
}

// Outcome is a short label for metrics and logs.
func (r RelayResult) Outcome() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Err != nil:
		return "failed"
	default:
		return "sent"
	}
}

// Webhook posts JSON notifications to a single configured URL.
type Webhook struct {
	url        string
	httpClient *http.Client
}

// NewWebhook returns nil when rawURL is empty, which Relay treats as disabled.
func NewWebhook(rawURL string, httpClient *http.Client) *Webhook {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Webhook{url: rawURL, httpClient: httpClient}
}

// Enabled reports whether a webhook URL is configured.
func (w *Webhook) Enabled() bool {
	return w != nil && w.url != ""
}

// Host returns the webhook host for logging without leaking path tokens.
func (w *Webhook) Host() string {
	if !w.Enabled() {
		return ""
	}
	u, err := url.Parse(w.url)
	if err != nil {
		return ""
	}
	return u.Host
}

// Relay delivers payload once. It never panics and never retries.
func (w *Webhook) Relay(ctx context.Context, payload any) (result RelayResult) {
	if !w.Enabled() {
		return RelayResult{Skipped: true}
	}

	ctx, span := tracer.Start(ctx, "notify.webhook.relay")
	defer span.End()
	span.SetAttributes(attribute.String("notify.webhook_host", w.Host()))

	defer func() {
		if rec := recover(); rec != nil {
			result = RelayResult{Err: fmt.Errorf("notify: webhook panic: %v", rec)}
		}
		if result.Err != nil {
			span.RecordError(result.Err)
		}
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return RelayResult{Err: fmt.Errorf("notify: marshal webhook payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return RelayResult{Err: fmt.Errorf("notify: create webhook request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return RelayResult{Err: fmt.Errorf("notify: post webhook: %w", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return RelayResult{StatusCode: resp.StatusCode, Err: &StatusError{StatusCode: resp.StatusCode}}
	}
	return RelayResult{StatusCode: resp.StatusCode}
}

// StatusError reports a non-2xx webhook reply.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("notify: webhook returned status %d", e.StatusCode)
}

// IsStatusError reports whether err came from a non-2xx webhook reply.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
