// Package api serves the plugin's JSON API over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/hopboxdev/fpp-tailscale/internal/connection"
	"github.com/hopboxdev/fpp-tailscale/internal/metrics"
	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
	"github.com/hopboxdev/fpp-tailscale/internal/status"
)

// StatusSource computes the connection state.
type StatusSource interface {
	Interpret(ctx context.Context) status.ConnectionState
}

// Controller runs connection actions.
type Controller interface {
	Connect(ctx context.Context) connection.Result
	Disconnect(ctx context.Context) connection.Result
	Logout(ctx context.Context) connection.Result
}

// Deps are the collaborators behind the API actions.
type Deps struct {
	Status     StatusSource
	Connection Controller
	Store      plugincfg.Store
	// ConfigFile is named in save error messages.
	ConfigFile string
	LogFile    string
	LogLines   int
	Hostname   plugincfg.HostnameFunc
	Metrics    metrics.Recorder
	// Registry, when set, is served on /metrics.
	Registry *prom.Registry
	Logger   *log.Logger
}

// Server routes API requests.
type Server struct {
	deps    Deps
	router  *chi.Mux
	actions map[string]actionFunc
}

// NewServer returns a Server for deps. Nil optional collaborators are
// replaced with no-op defaults.
func NewServer(deps Deps) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NoopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Hostname == nil {
		deps.Hostname = plugincfg.SystemHostname
	}
	if deps.LogLines <= 0 {
		deps.LogLines = 50
	}
	s := &Server{deps: deps, router: chi.NewRouter()}
	s.actions = s.actionTable()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	if s.deps.Registry != nil {
		s.router.Method(http.MethodGet, "/metrics", metrics.Handler(s.deps.Registry))
	}
	// FPP forwards plugin page requests without a fixed path, so the
	// dispatcher also answers on the root.
	for _, p := range []string{"/api", "/"} {
		s.router.Get(p, s.handleAPI)
		s.router.Post(p, s.handleAPI)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.deps.Logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"action", r.URL.Query().Get("action"),
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Serve serves h on ln until ctx is cancelled, then drains in-flight
// requests for up to drain.
func Serve(ctx context.Context, ln net.Listener, h http.Handler, drain time.Duration, logger *log.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Must exceed the connect bound on `tailscale up`.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", ln.Addr(), err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "drain", drain)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
