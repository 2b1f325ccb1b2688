package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/levelup-be/internal/admin"
	"github.com/hongminglow/levelup-be/internal/auth"
	"github.com/hongminglow/levelup-be/internal/config"
	"github.com/hongminglow/levelup-be/internal/feed"
	"github.com/hongminglow/levelup-be/internal/http/handlers"
	"github.com/hongminglow/levelup-be/internal/middleware"
	"github.com/hongminglow/levelup-be/internal/notify"
	"github.com/hongminglow/levelup-be/internal/payments"
	"github.com/hongminglow/levelup-be/internal/storage"
)

// Deps are the collaborators the API needs.
type Deps struct {
	Store    storage.Store
	Broker   feed.Broker
	Identity auth.IdentityProvider
	Notifier notify.Notifier
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner  *http.Server
	cancel context.CancelFunc
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	baseCtx, cancel := context.WithCancel(context.Background())
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// WriteTimeout stays unset: /payments/mine/watch streams until approval.
		IdleTimeout: 120 * time.Second,
	}

	return &Server{inner: httpServer, cancel: cancel}
}

// NewHandler builds the routed handler.
func NewHandler(cfg config.Config, deps Deps) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	paymentSvc := payments.NewService(deps.Store, deps.Broker, cfg.PaymentAmount)
	adminSvc := admin.NewService(deps.Store, deps.Store, deps.Notifier, cfg.Location())

	health := handlers.NewHealthHandler(time.Now(), map[string]handlers.Pinger{
		"store": deps.Store,
		"feed":  deps.Broker,
	})
	authHandler := handlers.NewAuthHandler(deps.Store, deps.Identity, tokens)
	paymentsHandler := handlers.NewPaymentsHandler(paymentSvc, cfg.DownloadURL)
	adminHandler := handlers.NewAdminHandler(adminSvc)

	r := chi.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	health.Register(r)
	authHandler.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(tokens))
		authHandler.RegisterSession(r)
		paymentsHandler.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Store))
			adminHandler.Register(r)
		})
	})

	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server. Open payment watch streams are
// cancelled first so they do not hold the shutdown open.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	return s.inner.Shutdown(ctx)
}
