package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"plumeai/internal/app"
	"plumeai/internal/util"
	"plumeai/pkg/domain"
)

// handleChat streams the scripted reply as a plain-text body, one character
// at a time with a fixed pacing delay, simulating an assistant typing. The
// stream is finite and strictly ordered; it stops at the next pacing point
// when the client disconnects.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.chatLimiter != nil && !s.chatLimiter.Allow(r.Context(), util.ClientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var req domain.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	script, err := s.app.ChatReply(req)
	if err != nil {
		if errors.Is(err, app.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "Message cannot be empty")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)

	logger := util.LoggerFromContext(r.Context())
	logger.Info("chat stream started", "mode", string(req.Mode), "script_len", len(script))

	ctx := r.Context()
	for _, ch := range script {
		if _, err := io.WriteString(w, string(ch)); err != nil {
			logger.Info("chat stream aborted", "err", err)
			return
		}
		flusher.Flush()
		if !s.pace(ctx) {
			logger.Info("client disconnected mid-stream")
			return
		}
	}
	logger.Info("chat stream completed")
}

// pace waits one character delay, returning false when the request context
// is done first.
func (s *Server) pace(ctx context.Context) bool {
	timer := time.NewTimer(s.charDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
