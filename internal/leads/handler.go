package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wolfman30/lead-funnel/internal/capi"
	"github.com/wolfman30/lead-funnel/internal/config"
	"github.com/wolfman30/lead-funnel/internal/notify"
	"github.com/wolfman30/lead-funnel/internal/observability/metrics"
	"github.com/wolfman30/lead-funnel/pkg/logging"
)

// EventSender submits a payload to the Conversions API.
type EventSender interface {
	SendEvents(ctx context.Context, payload any) (*capi.Response, error)
}

// Notifier relays a lead to the operator webhook. Failures are reported in the
// result, never returned.
type Notifier interface {
	Relay(ctx context.Context, payload any) notify.RelayResult
}

type errorResponse struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

type successResponse struct {
	Success    bool            `json:"success"`
	FBResponse json.RawMessage `json:"fb_response"`
}

// Forwarder handles lead submissions from the funnel form.
type Forwarder struct {
	cfg      *config.Config
	sender   EventSender
	notifier Notifier
	metrics  *metrics.LeadMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewForwarder creates a lead forwarder. notifier and m may be nil.
func NewForwarder(cfg *config.Config, sender EventSender, notifier Notifier, m *metrics.LeadMetrics, logger *logging.Logger) *Forwarder {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Forwarder{
		cfg:      cfg,
		sender:   sender,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// ServeHTTP handles /api/fb-lead for every method.
func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	if !f.cfg.ForwarderReady() || f.sender == nil {
		f.logger.Error("lead forwarder misconfigured", "error", ErrMissingConfig)
		f.metrics.ObserveForward("config_error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Server configuration error"})
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			f.logger.Error("lead handler panic", "panic", fmt.Sprint(rec))
			f.metrics.ObserveForward("internal_error")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		}
	}()

	f.forward(w, r)
}

func (f *Forwarder) forward(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sub, err := DecodeSubmission(r.Body)
	if err != nil {
		f.internalError(w, "decode submission", err)
		return
	}

	now := f.now()
	clientIP := ClientIP(r)
	payload := BuildEvent(sub, clientIP, now)

	start := time.Now()
	resp, err := f.sender.SendEvents(ctx, payload)
	f.metrics.ObserveCAPILatency(time.Since(start).Seconds())

	var apiErr *capi.APIError
	if errors.As(err, &apiErr) {
		f.logger.Error("capi lead event rejected", "status", apiErr.StatusCode, "body", string(apiErr.Body))
		f.metrics.ObserveForward("upstream_error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "FB API error", Details: apiErr.Body})
		return
	}
	if err != nil {
		f.internalError(w, "send capi event", err)
		return
	}
	if resp == nil {
		f.internalError(w, "send capi event", errors.New("leads: empty capi response"))
		return
	}

	f.logger.Info("capi lead event sent", "response", string(resp.Body))
	f.metrics.ObserveForward("sent")

	f.relayNotification(ctx, sub, clientIP)

	writeJSON(w, http.StatusOK, successResponse{Success: true, FBResponse: resp.Body})
}

// relayNotification posts the unhashed lead to the webhook when one is
// configured. Its outcome is logged and deliberately dropped.
func (f *Forwarder) relayNotification(ctx context.Context, sub *Submission, clientIP string) (result notify.RelayResult) {
	if f.notifier == nil {
		return notify.RelayResult{Skipped: true}
	}
	defer func() {
		if rec := recover(); rec != nil {
			result = notify.RelayResult{Err: fmt.Errorf("leads: webhook relay panic: %v", rec)}
			f.metrics.ObserveWebhook(result.Outcome())
			f.logger.Error("lead webhook failed", "error", result.Err)
		}
	}()
	result = f.notifier.Relay(ctx, BuildNotification(sub, clientIP, f.now()))
	f.metrics.ObserveWebhook(result.Outcome())
	switch {
	case result.Skipped:
		f.logger.Debug("lead webhook not configured")
	case result.Err != nil:
		f.logger.Error("lead webhook failed", "error", result.Err, "status", result.StatusCode)
	default:
		f.logger.Info("lead webhook sent", "status", result.StatusCode)
	}
	return result
}

func (f *Forwarder) internalError(w http.ResponseWriter, stage string, err error) {
	f.logger.Error("lead handler error", "stage", stage, "error", err)
	f.metrics.ObserveForward("internal_error")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
