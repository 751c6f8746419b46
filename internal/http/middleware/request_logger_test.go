package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wolfman30/lead-funnel/pkg/logging"
)

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/fb-lead", nil)
	req.Header.Set("X-Request-ID", "req-42")
	RequestLogger(logger)(handler).ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["status"] != float64(http.StatusMethodNotAllowed) {
		t.Fatalf("expected status 405, got %v", entry["status"])
	}
	if entry["request_id"] != "req-42" {
		t.Fatalf("expected request id from header, got %v", entry["request_id"])
	}
	if entry["path"] != "/api/fb-lead" {
		t.Fatalf("unexpected path %v", entry["path"])
	}
}

func TestRequestLoggerNilLogger(t *testing.T) {
	called := false
	RequestLogger(nil)(okHandler(&called)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("expected handler to be called")
	}
}
