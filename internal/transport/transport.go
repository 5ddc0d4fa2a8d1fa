// Package transport exposes the MCP server over HTTP with the liveness
// routes and request hygiene the stdio transport does not need.
package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Options tunes the HTTP surface.
type Options struct {
	// RateLimit is requests per minute per client IP, zero disables it.
	RateLimit int
	// MaxBodyBytes caps request bodies, zero uses DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// DefaultMaxBodyBytes bounds an MCP request body.
const DefaultMaxBodyBytes = 1 << 20

// NewRouter builds the HTTP handler: the MCP endpoint at /mcp plus
// root and health probes.
func NewRouter(server *mcp.Server, opts Options) http.Handler {
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(RequestID)
	r.Use(MaxBodySize(maxBody))
	if opts.RateLimit > 0 {
		limiter := NewRateLimiter(opts.RateLimit, time.Minute)
		r.Use(limiter.Middleware)
	}

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("MCP is running"))
	})
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
	r.Handle("/mcp", mcpHandler)
	r.Handle("/mcp/*", mcpHandler)

	return r
}
