// Package api exposes the bridge over HTTP: health and model catalog
// endpoints, an aggregate chat endpoint, an SSE streaming variant, and
// a structured-output endpoint that extracts JSON from the response.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	claudebridge "github.com/streamweld/claude-bridge"
	"github.com/streamweld/claude-bridge/internal/auth"
)

const (
	// DefaultAddr is the listen address when PORT is not set.
	DefaultAddr = ":7742"

	// DefaultChatTimeout bounds invocations spawned by HTTP requests.
	DefaultChatTimeout = 300 * time.Second
)

// Config holds the server settings read from the environment.
type Config struct {
	// Addr is the listen address, ":7742" by default.
	Addr string

	// ChatTimeout is the per-invocation deadline for HTTP-spawned runs.
	ChatTimeout time.Duration

	// CORSOrigins lists the allowed CORS origins, "*" by default.
	CORSOrigins []string
}

// ConfigFromEnv builds a Config from PORT, CHAT_TIMEOUT (seconds), and
// CORS_ORIGINS (comma-separated). Unset or unparseable values fall back
// to defaults.
func ConfigFromEnv() Config {
	cfg := Config{
		Addr:        DefaultAddr,
		ChatTimeout: DefaultChatTimeout,
		CORSOrigins: []string{"*"},
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + strings.TrimPrefix(port, ":")
	}

	if v := os.Getenv("CHAT_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.ChatTimeout = time.Duration(secs) * time.Second
		}
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string

		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}

		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}

	return cfg
}

type (
	invokeFunc func(ctx context.Context, prompt string, opts ...claudebridge.Option) (*claudebridge.ResultSummary, error)
	streamFunc func(ctx context.Context, prompt string, opts ...claudebridge.Option) (<-chan claudebridge.StreamChunk, error)
)

// Server holds the dependencies of the HTTP surface.
type Server struct {
	log  *slog.Logger
	cfg  Config
	auth *auth.Verifier

	// invoke and stream default to the bridge entry points; tests
	// substitute fakes here.
	invoke invokeFunc
	stream streamFunc
}

// NewServer wires a server over the given config and key verifier.
func NewServer(log *slog.Logger, cfg Config, verifier *auth.Verifier) *Server {
	return &Server{
		log:    log.With("component", "api"),
		cfg:    cfg,
		auth:   verifier,
		invoke: claudebridge.Invoke,
		stream: claudebridge.Stream,
	}
}

// Router builds the HTTP handler: request-ID, recoverer, logging, and
// CORS on every route, bearer auth on everything under /llm except the
// public model catalog.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.withRequestID)
	r.Use(s.recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/llm/models", s.handleModels)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/llm/status", s.handleStatus)
		r.Post("/llm/chat", s.handleChat)
		r.Post("/llm/chat/stream", s.handleChatStream)
		r.Post("/llm/json", s.handleJSON)
	})

	return r
}
