// Package server assembles the HTTP API: the chi router with its middleware
// stack, the feature handlers, and the listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/auth"
	"github.com/user/emojicringe-go/combos"
	"github.com/user/emojicringe-go/config"
	_ "github.com/user/emojicringe-go/docs" // Generated Swagger docs
	"github.com/user/emojicringe-go/feed"
	"github.com/user/emojicringe-go/logging"
	"github.com/user/emojicringe-go/metrics"
	"github.com/user/emojicringe-go/respond"
	"github.com/user/emojicringe-go/store"
	"github.com/user/emojicringe-go/users"
)

const shutdownTimeout = 30 * time.Second

// Server owns the router and everything it serves.
type Server struct {
	cfg     *config.AppConfig
	store   store.Store
	logger  logrus.FieldLogger
	feed    *feed.Broadcaster
	metrics *metrics.Metrics
	router  chi.Router
}

// New wires services and handlers on top of st and builds the router.
func New(cfg *config.AppConfig, st store.Store, logger logrus.FieldLogger) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		logger:  logger,
		feed:    feed.NewBroadcaster(logger),
		metrics: metrics.New(),
	}
	s.metrics.RegisterFeed(s.feed)
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	tokens := auth.NewTokenIssuer(s.cfg.Auth)
	authService := auth.NewAuthService(s.store.Users(), tokens, s.logger)
	authHandlers := auth.NewHandlers(authService, s.cfg.Auth.SecureCookies)

	comboService := combos.NewComboService(s.store, s.feed, s.logger)
	comboHandler := combos.NewComboHandler(comboService, s.feed.HandleStream())

	userHandlers := users.NewUserHandlers(users.NewUserService(s.store))

	limiter := newIPRateLimiter(s.cfg.Auth.RateLimit, s.cfg.Auth.RateBurst)

	r := chi.NewRouter()

	// Set before any route so mounted sub-routers inherit them.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, apperror.NewNotFoundError("Route not found", nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, apperror.NewMethodNotAllowedError("Method not allowed"))
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(s.logger))
	r.Use(respond.Verbose(s.cfg.IsDevelopment()))
	r.Use(recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.handleWelcome)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(limiter.Middleware)
			authHandlers.RegisterRoutes(r)
		})
		comboHandler.RegisterRoutes(r, auth.Middleware(tokens))
		userHandlers.RegisterRoutes(r)
	})

	return r
}

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, respond.Message{Message: "Welcome to the API!"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		respond.Error(w, r, apperror.NewDatabaseError("store unreachable", err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves on the configured port until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", s.cfg.Server.Port)

	// No WriteTimeout: the feed stream holds its response open.
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv.RegisterOnShutdown(s.feed.Close)

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
