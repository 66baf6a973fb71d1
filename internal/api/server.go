// Package api exposes the FanFlow HTTP surface: session lifecycle,
// dialog actions, the websocket event stream, clip listings and the
// login-rate precheck.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fanflow-app/fanflow/internal/cooldown"
	"github.com/fanflow-app/fanflow/internal/service"
)

// Default server tuning values.
const (
	DefaultAddr            = ":8080"
	DefaultTypingDelay     = 900 * time.Millisecond
	DefaultShutdownTimeout = 10 * time.Second
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 0 // websocket streams disable the write deadline
)

// ActorHeader carries the authenticated user id set by the fronting auth
// proxy. Requests without it are treated as anonymous and keyed by IP.
const ActorHeader = "X-User-ID"

// Opts holds configurable options for the API server.
type Opts struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// TypingDelay is applied to every created session.
	TypingDelay time.Duration
	// AllowedOrigins enables CORS for the listed origins; "*" allows any.
	AllowedOrigins []string
}

// Server wires the dialog services into HTTP handlers.
type Server struct {
	registry *Registry
	accounts *service.Accounts
	clips    *service.Clips
	opts     Opts

	httpSrv *http.Server
}

// NewServer creates the API server around the account and clip services.
func NewServer(accounts *service.Accounts, clips *service.Clips, opts Opts) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	s := &Server{
		registry: NewRegistry(),
		accounts: accounts,
		clips:    clips,
		opts:     opts,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.Get("/health", s.healthHandler)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login/precheck", s.loginPrecheckHandler)
		r.Get("/locales", s.localesHandler)
		r.Get("/clips", s.listClipsHandler)
		r.Post("/sessions", s.createSessionHandler)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSessionHandler)
			r.Delete("/", s.deleteSessionHandler)
			r.Post("/option", s.selectOptionHandler)
			r.Post("/input", s.submitInputHandler)
			r.Post("/restart", s.restartSessionHandler)
			r.Get("/events", s.eventsHandler)
		})
	})

	s.httpSrv = &http.Server{
		Addr:        opts.Addr,
		Handler:     r,
		ReadTimeout: DefaultReadTimeout,
	}
	return s
}

// Handler returns the underlying router, for tests.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

// Run starts serving and blocks until the listener fails or is shut down.
func (s *Server) Run() error {
	slog.Info("Server.Run: listening", "addr", s.opts.Addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains the listener and closes every live session.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Server.Shutdown: draining", "sessions", s.registry.Len())
	err := s.httpSrv.Shutdown(ctx)
	s.registry.CloseAll()
	return err
}

// corsMiddleware answers preflight requests and stamps the allow headers
// for configured origins.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+ActorHeader)
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// actor resolves the acting identity of a request: the auth proxy header
// when present, otherwise an IP-derived anonymous key.
func (s *Server) actor(r *http.Request) (actorID string, authenticated bool) {
	if id := strings.TrimSpace(r.Header.Get(ActorHeader)); id != "" {
		return id, true
	}
	return cooldown.IPActorKey(cooldown.ClientIP(r)), false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		slog.Error("Server.healthHandler: failed to write response", "error", err)
	}
}
