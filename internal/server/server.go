package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"plumeai/internal/app"
	"plumeai/internal/ratelimit"
	"plumeai/internal/util"
	"plumeai/pkg/domain"
)

const defaultStreamCharDelay = 10 * time.Millisecond

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
	// RedisClient enables per-IP rate limiting on the chat endpoint when
	// set; without it the endpoint is unguarded.
	RedisClient            *redis.Client
	ChatRateLimitPerMinute int
	// StreamCharDelay paces the simulated typing in chat responses.
	// Zero selects the 10ms default; tests inject a tiny value.
	StreamCharDelay time.Duration
}

// Server exposes the HTTP endpoints of the backend.
type Server struct {
	app         *app.App
	mux         *http.ServeMux
	chatLimiter *ratelimit.FixedWindowLimiter
	charDelay   time.Duration
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	charDelay := cfg.StreamCharDelay
	if charDelay <= 0 {
		charDelay = defaultStreamCharDelay
	}
	var chatLimiter *ratelimit.FixedWindowLimiter
	if cfg.RedisClient != nil {
		limit := cfg.ChatRateLimitPerMinute
		if limit <= 0 {
			limit = 60
		}
		var err error
		chatLimiter, err = ratelimit.NewFixedWindowLimiter(cfg.RedisClient, "plumeai:ratelimit:chat", limit, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("init chat limiter: %w", err)
		}
	}
	s := &Server{
		app:         cfg.App,
		mux:         http.NewServeMux(),
		chatLimiter: chatLimiter,
		charDelay:   charDelay,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler wrapped in the middleware chain.
// CORS is deliberately permissive: this is a demo surface, not a trust
// boundary.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(
		util.WithPermissiveCORS(
			util.WithRequestID(
				util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/api/hello", s.handleHello)
	s.mux.HandleFunc("/test", s.handleDiagnostics)
	s.mux.HandleFunc("/api/chat", s.handleChat)
	s.mux.HandleFunc("/api/ebook/save", s.handleEbookSave)
	s.mux.HandleFunc("/api/ebook/list", s.handleEbookList)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	// "/" is the ServeMux catch-all; anything but the root itself is 404.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello from the PlumeAI backend!"})
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello from the backend API!"})
}

// handleDiagnostics reports backend and database state. It must never fail
// the call itself; all probe errors are rendered inside the payload.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Diagnostics(r.Context()))
}

func (s *Server) handleEbookSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var draft domain.EbookDraft
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := s.app.SaveDraft(r.Context(), draft)
	if err != nil {
		if errors.Is(err, app.ErrStoreNotConfigured) {
			writeError(w, http.StatusInternalServerError, "Database not configured")
			return
		}
		util.LoggerFromContext(r.Context()).Error("save draft failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Database not available: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEbookList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	// Absent or malformed limit falls back to the default; the list
	// endpoint does not fail on client input.
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	drafts, err := s.app.ListDrafts(r.Context(), limit)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("list drafts failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Database not available: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": drafts})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
