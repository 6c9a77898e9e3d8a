// Package server wires the dependency graph and owns the HTTP server.
//
//	config → sqlstore.DB → services → handlers → chi router
//
// NewRouter builds the routes from already-constructed dependencies so
// tests can serve the full stack over a temporary database.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/sakif/movie-platform/internal/auth"
	"github.com/sakif/movie-platform/internal/config"
	"github.com/sakif/movie-platform/internal/handler"
	"github.com/sakif/movie-platform/internal/metrics"
	"github.com/sakif/movie-platform/internal/middleware"
	"github.com/sakif/movie-platform/internal/repository/sqlstore"
	"github.com/sakif/movie-platform/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Deps is everything NewRouter needs. Provider and Metrics may be nil.
type Deps struct {
	DB        *sqlstore.DB
	Tokens    *auth.TokenService
	Passwords *auth.PasswordService
	Provider  handler.IdentityProvider
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	CORSOrigin string
	// RateLimitAuth is requests per minute per IP on /auth; 0 disables it.
	RateLimitAuth int
	// Development adds error detail to 500 responses.
	Development bool
}

// Server owns the database pool for its lifetime and closes it on shutdown.
type Server struct {
	router http.Handler
	cfg    *config.Config
	logger *slog.Logger
	db     *sqlstore.DB
}

// New opens the database, optionally migrates it, and builds the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqlstore.Open(ctx, cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("server: opening database: %w", err)
	}

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("server: migrating database: %w", err)
		}
		logger.Info("database migrated")
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("server: creating token service: %w", err)
	}

	var provider handler.IdentityProvider
	if cfg.GitHub.Enabled() {
		provider = auth.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.CallbackURL, logger)
	}

	router := NewRouter(Deps{
		DB:            db,
		Tokens:        tokens,
		Passwords:     auth.NewPasswordService(),
		Provider:      provider,
		Metrics:       metrics.New(),
		Logger:        logger,
		CORSOrigin:    cfg.CORSOrigin,
		RateLimitAuth: cfg.RateLimitAuth,
		Development:   cfg.IsDevelopment(),
	})

	return &Server{router: router, cfg: cfg, logger: logger, db: db}, nil
}

// NewRouter mounts every route:
//
//	POST   /auth/register
//	POST   /auth/login
//	POST   /auth/firebase-login
//	GET    /auth/github/login            (only with a provider)
//	GET    /auth/github/callback         (only with a provider)
//	GET    /users/check-username
//	GET    /users/me                     bearer
//	PATCH  /users/me                     bearer
//	PATCH  /users/{id}/firebase-uid      bearer
//	POST   /favorites                    bearer
//	GET    /favorites                    bearer
//	DELETE /favorites/{movieId}          bearer
//	POST   /comments                     bearer
//	GET    /comments
//	GET    /health
//	GET    /metrics                      (only with metrics)
func NewRouter(d Deps) http.Handler {
	accounts := service.NewAccountService(d.DB.Users(), d.Tokens, d.Passwords, d.Logger)
	if d.Metrics != nil {
		accounts.SetObserver(d.Metrics)
	}
	favorites := service.NewFavoriteService(d.DB.Favorites(), d.Logger)
	comments := service.NewCommentService(d.DB.Comments(), d.Logger)

	authHandler := handler.NewAuthHandler(accounts, d.Provider, d.Logger, d.Development)
	userHandler := handler.NewUserHandler(accounts, d.Logger, d.Development)
	favoriteHandler := handler.NewFavoriteHandler(favorites, d.Logger, d.Development)
	commentHandler := handler.NewCommentHandler(comments, d.Logger, d.Development)

	r := chi.NewRouter()

	var observer middleware.RequestObserver
	if d.Metrics != nil {
		observer = d.Metrics
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger, observer))
	r.Use(middleware.Recoverer(d.Logger, d.Development))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	requireAuth := auth.RequireAuth(d.Tokens, func(r *http.Request, err error) {
		d.Logger.Debug("request rejected", slog.String("path", r.URL.Path), slog.String("reason", err.Error()))
	})

	r.Get("/health", handler.Health(d.DB, d.Logger))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		if d.RateLimitAuth > 0 {
			r.Use(authRateLimit(d.RateLimitAuth))
		}
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/firebase-login", authHandler.HandleExternalLogin)
		if d.Provider != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/check-username", userHandler.HandleCheckUsername)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", userHandler.HandleMe)
			r.Patch("/me", userHandler.HandleUpdateMe)
			r.Patch("/{id}/firebase-uid", userHandler.HandleLinkExternalIdentity)
		})
	})

	r.Route("/favorites", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", favoriteHandler.HandleAdd)
		r.Get("/", favoriteHandler.HandleList)
		r.Delete("/{movieId}", favoriteHandler.HandleRemove)
	})

	r.Route("/comments", func(r chi.Router) {
		r.Get("/", commentHandler.HandleList)
		r.With(requireAuth).Post("/", commentHandler.HandleAdd)
	})

	return r
}

// authRateLimit limits each client IP to perMinute requests on /auth.
func authRateLimit(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limited","message":"too many requests, try again later"}`))
		}),
	)
}

// Handler returns the root handler (for tests and embedding).
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the database pool.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("env", s.cfg.AppEnv),
			slog.String("driver", s.db.Driver()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listening: %w", err)
		}
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server: graceful shutdown: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
