package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"

	"github.com/njchilds90/logtower"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type server struct {
	cfg     config
	log     *log.Logger
	tools   *logtower.ToolHandler
	limiter *rate.Limiter
}

func newServer(cfg config, logger *log.Logger) *server {
	s := &server{
		cfg: cfg,
		log: logger,
		tools: &logtower.ToolHandler{
			MaxDegree: cfg.MaxDegree,
			Options: []logtower.Option{
				logtower.WithThreshold(cfg.Threshold),
				logtower.WithLogger(logger.WithPrefix("engine")),
			},
		},
	}
	if cfg.Rate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)
	}
	return s
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tool", s.handleTool)
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, logtower.ToolSpec())
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	return gzhttp.GzipHandler(mux)
}

// handleTool runs one tool call under the configured deadline. The core has
// no interruption point, so an overrun call keeps running in its goroutine
// and its result is dropped.
func (s *server) handleTool(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("panic in /tool", "panic", rec, "stack", string(debug.Stack()))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.limiter != nil && !s.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req logtower.ToolRequest
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.call(ctx, req)
	if err != nil {
		s.log.Warn("tool call abandoned", "tool", req.Tool, "after", time.Since(start), "error", err)
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	size := writeJSON(w, status, resp)
	s.log.Info("tool call",
		"tool", req.Tool,
		"status", status,
		"terms", resp.Terms,
		"size", humanize.Bytes(uint64(size)),
		"took", time.Since(start),
	)
}

func (s *server) call(ctx context.Context, req logtower.ToolRequest) (logtower.ToolResponse, error) {
	done := make(chan logtower.ToolResponse, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic in tool call", "tool", req.Tool, "panic", rec)
				done <- logtower.ToolResponse{Error: fmt.Sprintf("internal error: %v", rec)}
			}
		}()
		done <- s.tools.Handle(req)
	}()
	select {
	case resp := <-done:
		return resp, nil
	case <-ctx.Done():
		return logtower.ToolResponse{}, fmt.Errorf("tool %s: %w", req.Tool, ctx.Err())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) int {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(v)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	n, _ := w.Write(buf.Bytes())
	return n
}
