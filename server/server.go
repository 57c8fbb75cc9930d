// Package server exposes the stylesheet pipeline as an HTTP endpoint,
// demonstrating end-to-end use of the process(relativePath, ifModifiedSince)
// contract the pipeline package implements.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"stylepipe/css"
	"stylepipe/state"
)

// Server adapts *state.LocalEnv's pipeline/cache into an http.Handler.
type Server struct {
	env *state.LocalEnv
	log *zap.Logger
}

func New(env *state.LocalEnv) *Server {
	log := env.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{env: env, log: log.Named("server")}
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleStylesheet)
	mux.HandleFunc("/admin/purge", s.handlePurge)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// handleStylesheet maps a request path to process(relativePath,
// ifModifiedSince), per §6: the request always goes through Pipeline.Load
// first (normally a cache hit); an If-Modified-Since within one second of
// the returned timestamp is then treated as a match and answered 304.
func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	relativePath := strings.TrimPrefix(r.URL.Path, "/")

	var ifModifiedSince time.Time
	if h := r.Header.Get("If-Modified-Since"); h != "" {
		if t, err := http.ParseTime(h); err == nil {
			ifModifiedSince = t
		}
	}

	fc, err := s.env.Pipeline.Load(r.Context(), relativePath)
	if err != nil {
		s.writeError(w, relativePath, err)
		return
	}

	if !ifModifiedSince.IsZero() && dateEqualWithinOneSecond(fc.LastModified, ifModifiedSince) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Last-Modified", fc.LastModified.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(fc.Content))
}

// dateEqualWithinOneSecond implements the 1-second conditional-GET
// tolerance from §6: HTTP dates carry only whole-second resolution, so an
// exact comparison against a sub-second-precision cache timestamp would
// never match.
func dateEqualWithinOneSecond(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < time.Second
}

// handlePurge evicts exactly one cache entry, named by ?path=..., once the
// admin token matches; a request without a path is answered 400 and evicts
// nothing. There is no wildcard eviction.
func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	token := s.env.Cfg.Server.AdminToken
	if token == "" {
		http.Error(w, "admin endpoint disabled", http.StatusForbidden)
		return
	}
	supplied := r.Header.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(supplied), []byte("Bearer "+string(token))) != 1 {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "missing path parameter", http.StatusBadRequest)
		return
	}
	s.env.Cache.Remove(path)
	s.log.Info("Purged cache entry", zap.String("path", path))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, relativePath string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, css.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, css.ErrBadInput):
		status = http.StatusBadRequest
	}
	s.log.Warn("Request failed", zap.String("path", relativePath), zap.Error(err), zap.Int("status", status))
	http.Error(w, err.Error(), status)
}
