package transport_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/transport"
)

func newTestRouter(opts transport.Options) http.Handler {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "dev"}, nil)
	return transport.NewRouter(server, opts)
}

func TestRootAndHealth(t *testing.T) {
	router := newTestRouter(transport.Options{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from root, got %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if string(body) != "MCP is running" {
		t.Errorf("unexpected root body: %q", body)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %q", rr.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	var captured string
	handler := transport.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Header.Get(transport.RequestIDHeader)
	}))

	// A missing id gets generated and echoed back.
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if captured == "" {
		t.Error("expected a generated request id")
	}
	if got := rr.Header().Get(transport.RequestIDHeader); got != captured {
		t.Errorf("response id %q does not match request id %q", got, captured)
	}

	// A provided id is preserved.
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(transport.RequestIDHeader, "fixed-id")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if captured != "fixed-id" || rr.Header().Get(transport.RequestIDHeader) != "fixed-id" {
		t.Errorf("expected fixed-id to pass through, got %q", captured)
	}
}

func TestMaxBodySize(t *testing.T) {
	handler := transport.MaxBodySize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader("tiny")))
	if rr.Code != http.StatusOK {
		t.Errorf("expected small body to pass, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader("definitely more than eight bytes")))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected oversized body to be rejected, got %d", rr.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := transport.NewRateLimiter(2, time.Minute)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i+1, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after the limit, got %d", rr.Code)
	}

	// Other clients are unaffected.
	rr = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected other client to pass, got %d", rr.Code)
	}
}
