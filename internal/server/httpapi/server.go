// Package httpapi exposes the authentication service over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbortnikov/marketauth/internal/logging"
	"github.com/mbortnikov/marketauth/internal/server/metrics"
	"github.com/mbortnikov/marketauth/internal/server/models"
	"github.com/mbortnikov/marketauth/internal/server/services"
	"github.com/mbortnikov/marketauth/internal/server/validation"
)

// AccountService is the subset of the service layer the HTTP handlers need.
type AccountService interface {
	SignUp(ctx context.Context, in validation.SignupInput) (*models.Account, error)
	Login(ctx context.Context, in validation.LoginInput) (string, error)
	RequestVerification(ctx context.Context, encodedToken string) (*services.Confirmation, error)
}

// Server hosts the HTTP API.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

// NewServer builds the router and wraps it in an http.Server listening on
// addr. gatherer may be nil, in which case /metrics is not exposed.
func NewServer(addr string, svc AccountService, rec metrics.Recorder,
	limiter *RateLimiter, gatherer prometheus.Gatherer, logger logging.Logger) *Server {

	h := &handlers{service: svc, logger: logger.With("module", "httpapi")}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics(rec))

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Post("/signup", h.signup)
		r.Post("/login", h.login)
	})

	r.Get("/verify", h.verify)

	r.Route("/user", func(r chi.Router) {
		r.Get("/profile", h.profile)
		r.Get("/cart", h.cart)
		r.Get("/payment", h.payment)
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the underlying router, for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "http server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
