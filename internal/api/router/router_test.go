package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/lead-funnel/internal/capi"
	"github.com/wolfman30/lead-funnel/internal/config"
	"github.com/wolfman30/lead-funnel/internal/leads"
	"github.com/wolfman30/lead-funnel/internal/observability/metrics"
	"github.com/wolfman30/lead-funnel/internal/pixelconfig"
	"github.com/wolfman30/lead-funnel/pkg/logging"
)

type stubSender struct{ calls int }

func (s *stubSender) SendEvents(context.Context, any) (*capi.Response, error) {
	s.calls++
	return &capi.Response{StatusCode: http.StatusOK, Body: json.RawMessage(`{"events_received":1}`)}, nil
}

func newTestRouter(t *testing.T, sender *stubSender) http.Handler {
	t.Helper()

	logger := logging.Discard()
	reg := prometheus.NewRegistry()
	cfg := &config.Config{FBPixelID: "pixel-1", FBAccessToken: "token-1"}

	return New(&Config{
		Logger:             logger,
		LeadForwarder:      leads.NewForwarder(cfg, sender, nil, metrics.NewLeadMetrics(reg), logger),
		PixelConfig:        pixelconfig.NewHandler(cfg.FBPixelID),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"*"},
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubSender{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterLeadEndpoint(t *testing.T) {
	sender := &stubSender{}
	router := newTestRouter(t, sender)

	req := httptest.NewRequest(http.MethodPost, "/api/fb-lead", strings.NewReader(`{"email":"jane@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if sender.calls != 1 {
		t.Fatalf("expected one capi call, got %d", sender.calls)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Fatalf("expected lead CORS methods, got %q", got)
	}
}

func TestRouterLeadEndpointMethods(t *testing.T) {
	sender := &stubSender{}
	router := newTestRouter(t, sender)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/fb-lead", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/fb-lead", nil)
	req.Header.Set("Origin", "https://funnel.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.Len() != 0 {
		t.Fatalf("expected empty 200 preflight, got %d %q", rr.Code, rr.Body.String())
	}
	if sender.calls != 0 {
		t.Fatalf("expected no capi calls, got %d", sender.calls)
	}
}

func TestRouterPixelConfig(t *testing.T) {
	router := newTestRouter(t, &stubSender{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pixel-config", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != `window.__FB_PIXEL_ID="pixel-1";` {
		t.Fatalf("unexpected body %q", body)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard CORS, got %q", got)
	}
}

func TestRouterPixelConfigAnswersAnyMethod(t *testing.T) {
	router := newTestRouter(t, &stubSender{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/pixel-config", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != `window.__FB_PIXEL_ID="pixel-1";` {
		t.Fatalf("unexpected body %q", body)
	}
	if got := rr.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Fatalf("unexpected cache control %q", got)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	sender := &stubSender{}
	router := newTestRouter(t, sender)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/fb-lead", strings.NewReader(`{}`)))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `leadfunnel_leads_forwarded_total{outcome="sent"} 1`) {
		t.Fatalf("expected forwarded counter in metrics output, got:\n%s", body)
	}
}
