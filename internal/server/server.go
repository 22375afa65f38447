package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/messagely/apiserver/config"
	"github.com/messagely/apiserver/internal/db"
	"github.com/messagely/apiserver/internal/handlers"
	mw "github.com/messagely/apiserver/internal/middleware"
	"github.com/messagely/apiserver/internal/mq"
	"github.com/messagely/apiserver/internal/services"
	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/internal/store/memory"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the router needs. DB and Events may be nil.
type Deps struct {
	Users    services.UserRepository
	Messages services.MessageRepository
	DB       handlers.Pinger
	Events   services.EventPublisher
}

// Options tweak how New wires the server.
type Options struct {
	// InMemory replaces Postgres with the in-process store.
	InMemory bool
}

// Server wraps the HTTP server and the resources it owns.
type Server struct {
	httpServer *http.Server
	db         *sql.DB
	bus        *mq.MQ
	log        zerolog.Logger
}

// New opens the database (unless opts.InMemory) and the message bus, then
// builds the HTTP server.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger, opts Options) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	srv := &Server{log: log}
	var deps Deps
	if opts.InMemory {
		mem := memory.New()
		deps.Users = mem.Users()
		deps.Messages = mem.Messages()
		log.Warn().Msg("using in-memory store; data is lost on exit")
	} else {
		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		srv.db = dbConn
		deps.Users = store.NewUserRepository(dbConn)
		deps.Messages = store.NewMessageRepository(dbConn)
		deps.DB = dbConn
	}

	bus, err := mq.Open(ctx, cfg.MQ)
	switch {
	case errors.Is(err, mq.ErrDisabled):
		log.Info().Msg("message bus disabled")
	case err != nil:
		srv.closeResources()
		return nil, fmt.Errorf("open message bus: %w", err)
	default:
		srv.bus = bus
		deps.Events = bus
		log.Info().Str("backend", cfg.MQ.Backend).Msg("message bus connected")
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}
	srv.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      NewRouter(cfg, deps, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv, nil
}

// NewRouter mounts every route on a fresh chi router.
func NewRouter(cfg config.Config, deps Deps, log zerolog.Logger) http.Handler {
	users := services.NewUserService(deps.Users, cfg.Auth.BcryptWorkFactor)
	messages := services.NewMessageService(deps.Messages, deps.Events, log)
	authMiddleware := handlers.RequireAuth(cfg.Auth.JWTSecret)
	limiter := mw.PerMinute(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		mw.RequestLogger(log),
		middleware.Recoverer,
		mw.Prometheus,
		middleware.Timeout(60*time.Second),
	)

	router.Get("/healthz", handlers.Healthz)
	router.Get("/readyz", handlers.Readyz(deps.DB, log))
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/auth", func(r chi.Router) {
		r.Use(limiter.Middleware)
		handlers.AuthRouter(r, handlers.NewAuthHandler(users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), log)
	})
	router.Route("/messages", func(r chi.Router) {
		handlers.MessageRouter(r, handlers.NewMessageHandler(messages), authMiddleware, log)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, handlers.NewUserHandler(users), authMiddleware, log)
	})
	return router
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the bus and database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.closeResources()
	return err
}

func (s *Server) closeResources() {
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close message bus")
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
