// Package server is the HTTP API over the active snapshot:
// the aggregate views, the derived leaderboard, fetch history,
// and on-demand refresh.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	gosync "sync"
	"time"

	"github.com/usagedeck/usagedeck/internal/config"
	"github.com/usagedeck/usagedeck/internal/db"
	"github.com/usagedeck/usagedeck/internal/fetch"
	"github.com/usagedeck/usagedeck/internal/snapshot"
)

// VersionInfo holds build-time version metadata.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// Server serves the REST API over the active snapshot store.
// The engine and database are optional: without an API key
// there is no engine (refresh returns 503), and without a
// database there is no fetch history.
type Server struct {
	mu      gosync.RWMutex
	cfg     config.Config
	store   *snapshot.Store
	engine  *fetch.Engine
	db      *db.DB
	mux     *http.ServeMux
	httpSrv *http.Server
	version VersionInfo
	now     func() time.Time
}

// New creates a new Server.
func New(
	cfg config.Config, store *snapshot.Store,
	engine *fetch.Engine, database *db.DB, opts ...Option,
) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		engine: engine,
		db:     database,
		mux:    http.NewServeMux(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the build-time version metadata.
func WithVersion(v VersionInfo) Option {
	return func(s *Server) { s.version = v }
}

// WithNow overrides the clock used for month-to-date slicing,
// allowing tests to pin the current month. Nil is ignored.
func WithNow(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func (s *Server) routes() {
	s.mux.Handle("GET /api/v1/snapshot", s.withTimeout(s.handleSnapshot))
	s.mux.Handle("GET /api/v1/daily", s.withTimeout(s.handleDaily))
	s.mux.Handle("GET /api/v1/users", s.withTimeout(s.handleUsers))
	s.mux.Handle("GET /api/v1/tools", s.withTimeout(s.handleTools))
	s.mux.Handle("GET /api/v1/projects", s.withTimeout(s.handleProjects))
	s.mux.Handle("GET /api/v1/leaderboard", s.withTimeout(s.handleLeaderboard))
	s.mux.Handle("GET /api/v1/history", s.withTimeout(s.handleHistory))
	s.mux.Handle("GET /api/v1/version", s.withTimeout(s.handleGetVersion))
	// Refresh runs a full fetch cycle; the timeout middleware
	// would cut long upstream calls short.
	s.mux.HandleFunc("POST /api/v1/refresh", s.handleRefresh)
}

func (s *Server) handleGetVersion(
	w http.ResponseWriter, _ *http.Request,
) {
	writeJSON(w, http.StatusOK, s.version)
}

// Handler returns the http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()
	log.Printf("Starting server at http://%s", addr)
	return srv.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.httpSrv
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// FindAvailablePort finds an available port starting from the
// given port, binding to the specified host.
func FindAvailablePort(host string, start int) int {
	for port := start; port < start+100; port++ {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			ln.Close()
			return port
		}
	}
	return start
}

// writeJSON writes v as JSON with the given HTTP status code.
// Logs a warning if JSON encoding fails.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON: encoding response: %v", err)
	}
}

// writeError writes a JSON error response with the given status
// and message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleContextError detects context cancellation errors,
// returning true so the caller stops processing. It does not
// write a response; the timeout middleware owns the 503.
func handleContextError(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
