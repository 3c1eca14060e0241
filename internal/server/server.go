package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hookdeploy/internal/config"
	"hookdeploy/internal/hook"
)

const (
	// HTTP server timeouts
	HTTPReadTimeout  = 10 * time.Second
	HTTPWriteTimeout = 10 * time.Second
	HTTPIdleTimeout  = 60 * time.Second

	// Request timeout for middleware
	RequestTimeout = 30 * time.Second
)

// Runner is the dispatcher seen by the webhook handler. The concrete
// implementation lives in internal/dispatch; tests substitute a spy.
type Runner interface {
	// CheckScript re-checks the target script's existence at dispatch time.
	CheckScript(target *config.Target) error

	// Dispatch launches the deployment fire-and-forget.
	Dispatch(target *config.Target, ctx hook.Context, delivery string)
}

// Server is the webhook HTTP server.
type Server struct {
	Settings   *config.Settings
	Hooks      *hook.Router
	Dispatcher Runner
	Logger     *slog.Logger
	TestMode   bool // disables rate limiting for handler tests
}

// NewServer creates a new server over validated settings.
func NewServer(settings *config.Settings, dispatcher Runner, logger *slog.Logger, testMode bool) *Server {
	return &Server{
		Settings:   settings,
		Hooks:      hook.NewRouter(settings),
		Dispatcher: dispatcher,
		Logger:     logger,
		TestMode:   testMode,
	}
}

// Router creates and configures the HTTP router.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	// Logging middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				s.Logger.Info("http_request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds())
			}()

			next.ServeHTTP(ww, r)
		})
	})

	r.Get("/health", s.HandleHealth)

	// Webhook route, rate limited ahead of signature verification
	if !s.TestMode {
		r.With(NewRateLimitMiddleware(s.Logger)).Post("/githubwebhook", s.HandleWebhook)
	} else {
		r.Post("/githubwebhook", s.HandleWebhook)
	}

	return r
}

// Start starts the HTTP server (blocking).
func (s *Server) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.Logger.Info("Starting server", "addr", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  HTTPReadTimeout,
		WriteTimeout: HTTPWriteTimeout,
		IdleTimeout:  HTTPIdleTimeout,
	}

	return server.ListenAndServe()
}
