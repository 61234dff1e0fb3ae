package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hongminglow/barbershop-users/internal/auth"
	"github.com/hongminglow/barbershop-users/internal/config"
	"github.com/hongminglow/barbershop-users/internal/http/handlers"
	"github.com/hongminglow/barbershop-users/internal/http/respond"
	"github.com/hongminglow/barbershop-users/internal/logging"
	"github.com/hongminglow/barbershop-users/internal/middleware"
	"github.com/hongminglow/barbershop-users/internal/service"
	"github.com/hongminglow/barbershop-users/internal/storage"
	"github.com/hongminglow/barbershop-users/internal/storage/postgres"
	"github.com/hongminglow/barbershop-users/internal/storage/sqlite"
)

// ErrUnsupportedDatabase is returned by OpenStore for unknown URL schemes.
var ErrUnsupportedDatabase = errors.New("unsupported database url")

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up services, middleware and routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, log logging.Logger) (*Server, error) {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	users, err := service.NewUserService(store, auth.NewPasswordHasher(cfg.BcryptCost), tokens, log)
	if err != nil {
		return nil, fmt.Errorf("init user service: %w", err)
	}

	rs := respond.New(log)
	authn := middleware.NewAuthenticator(tokens, store, rs, log.With("component", "auth"))

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), rs).Register(mux)
	handlers.NewAuthHandler(users, rs).Register(mux)
	handlers.NewUsersHandler(users, authn, rs).Register(mux)

	handler := middleware.Chain(mux,
		middleware.CORS(cfg.CORSOrigins),
		middleware.Logging(log.With("component", "http")),
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}, nil
}

// Handler exposes the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.inner.Addr
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

// OpenStore picks the backend from the database URL. postgres:// and
// postgresql:// URLs open a Postgres pool; sqlite:// URLs and bare paths open
// a SQLite file.
func OpenStore(ctx context.Context, databaseURL string) (storage.UserStore, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.NewUserStore(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return nil, fmt.Errorf("%w: %q has no path", ErrUnsupportedDatabase, databaseURL)
		}
		return sqlite.NewUserStore(ctx, path)
	case strings.Contains(databaseURL, "://"):
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDatabase, databaseURL)
	default:
		return sqlite.NewUserStore(ctx, databaseURL)
	}
}
