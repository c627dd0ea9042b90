// Package server wires the Skout application together and runs the HTTP server.
//
// Initialization follows a fixed order: storage backends, the session store,
// the hosted backend client, the session manager, handlers and pages, and
// finally the routes. Maintenance jobs run on a cron schedule next to the
// server and stop with it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/config"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/database"
	"github.com/skout-hq/skout/internal/editor"
	"github.com/skout-hq/skout/internal/handlers"
	"github.com/skout-hq/skout/internal/metrics"
	"github.com/skout-hq/skout/internal/models"
	"github.com/skout-hq/skout/internal/repository"
	"github.com/skout-hq/skout/internal/resilience"
	"github.com/skout-hq/skout/internal/service"
	"github.com/skout-hq/skout/internal/session"
	"github.com/skout-hq/skout/internal/supabase"
	"github.com/skout-hq/skout/internal/utils"
	"github.com/skout-hq/skout/internal/utils/ratelimit"
	"github.com/skout-hq/skout/internal/web"
	"github.com/skout-hq/skout/migrations"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	AuthHandler    *handlers.AuthHandler
	ProfileHandler *handlers.ProfileHandler
	MonitorHandler *handlers.MonitorHandler
	HealthHandler  *handlers.HealthHandler
}

// Drafts holds the per-session editors of the two config pages.
type Drafts struct {
	Credentials *editor.Registry[models.CredentialsForm]
	Moderation  *editor.Registry[models.ModerationSettings]
}

// Server represents the Skout web server.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db is the PostgreSQL pool, nil unless the backend mode is postgres
	Db *database.Pool

	// Redis backs the session store, nil unless the session store is redis
	Redis *redis.Client

	Handlers *Handlers
	Pages    *web.Pages
	Sessions *session.Manager
	Drafts   Drafts
	Limiter  *ratelimit.Store

	store      session.Store
	backend    *supabase.Client
	router     chi.Router
	httpServer *http.Server
	cron       *cron.Cron
}

// NewServer creates a new server instance with all required components.
//
// Parameters:
//   - cfg: Application configuration
//
// Returns:
//   - A fully initialized Server instance ready to start
//   - An error if initialization of any component fails
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{Config: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DBConnectionTimeout)
	defer cancel()

	if err := s.setupDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	if err := s.setupSessionStore(ctx); err != nil {
		s.closeStorage()
		return nil, fmt.Errorf("failed to set up session store: %w", err)
	}

	if err := s.setupServices(); err != nil {
		s.closeStorage()
		return nil, fmt.Errorf("failed to set up services: %w", err)
	}

	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	return s, nil
}

// setupDatabase connects to PostgreSQL and runs migrations when profiles and
// monitor rows are stored directly. The hosted rows API needs neither.
func (s *Server) setupDatabase(ctx context.Context) error {
	if s.Config.Backend.Mode != constants.BackendModePostgres {
		return nil
	}

	db, err := database.Connect(ctx, s.Config)
	if err != nil {
		return err
	}
	s.Db = db

	migrator := migrations.NewMigrator(db)
	if err := migrator.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

// setupSessionStore creates the in-memory store or the sealed Redis store.
func (s *Server) setupSessionStore(ctx context.Context) error {
	ttl := s.Config.Session.TTL

	if s.Config.Session.Store != constants.SessionStoreRedis {
		s.store = session.NewMemoryStore(ttl)
		return nil
	}

	sealer, err := utils.NewSealer(s.Config.Session.Secret, constants.SessionSealInfo)
	if err != nil {
		return fmt.Errorf("failed to create session sealer: %w", err)
	}

	client, err := session.NewRedisClient(ctx, s.Config.Redis)
	if err != nil {
		return err
	}
	s.Redis = client
	s.store = session.NewRedisStore(client, sealer, ttl)
	return nil
}

// setupServices builds the backend client, repositories, the session
// manager, the editor registries, handlers and pages.
func (s *Server) setupServices() error {
	backend, err := supabase.NewClient(s.Config.Supabase)
	if err != nil {
		return err
	}
	s.backend = backend

	var (
		profiles repository.ProfileRepository
		configs  repository.MonitorConfigRepository
	)
	if s.Db != nil {
		profiles = repository.NewPostgresProfileRepository(s.Db)
		configs = repository.NewPostgresMonitorConfigRepository(s.Db)
	} else {
		profiles = repository.NewRESTProfileRepository(backend)
		configs = repository.NewRESTMonitorConfigRepository(backend)
	}

	idle := s.Config.Session.DraftIdleTTL
	s.Drafts = Drafts{
		Credentials: editor.NewRegistry(constants.EditorCredentials, idle, func() *editor.Editor[models.CredentialsForm] {
			return editor.New(constants.EditorCredentials, models.CredentialsForm{}, nil)
		}),
		Moderation: editor.NewRegistry(constants.EditorModeration, idle, func() *editor.Editor[models.ModerationSettings] {
			return editor.New(constants.EditorModeration, models.DefaultModerationSettings(), models.ModerationSettings.Clone)
		}),
	}

	s.Sessions = session.NewManager(backend, profiles, s.store, session.NewBroker(constants.EventBufferSize), s.draftGroup(), session.Options{
		RefreshMargin: s.Config.Session.RefreshMargin,
		ProfileRetry: resilience.RetryOptions{
			Attempts: s.Config.Session.ProfileFetchAttempts,
			Delay:    s.Config.Session.ProfileFetchDelay,
		},
		RedirectTo: s.Config.App.BaseURL + constants.PageAuthCallback,
	})

	s.Limiter = ratelimit.NewStore(ratelimit.Rate{
		RequestsPerSecond: s.Config.RateLimit.RequestsPerSecond,
		Burst:             s.Config.RateLimit.Burst,
	}, constants.LimiterMaxIdle)
	s.Limiter.SetRate(constants.RateCategoryAuth, ratelimit.Rate{
		RequestsPerSecond: s.Config.RateLimit.AuthRequestsPerSecond,
		Burst:             s.Config.RateLimit.AuthBurst,
	})

	monitors := service.NewMonitorService(profiles, configs)
	cookies := handlers.CookieOptions{TTL: s.Config.Session.TTL, Secure: s.Config.Session.CookieSecure}

	s.Handlers = &Handlers{
		AuthHandler:    handlers.NewAuthHandler(s.Sessions, cookies),
		ProfileHandler: handlers.NewProfileHandler(s.Sessions, profiles),
		MonitorHandler: handlers.NewMonitorHandler(monitors, s.Drafts.Credentials, s.Drafts.Moderation),
		HealthHandler:  handlers.NewHealthHandler(s.Config.App.Version, s.Config.App.Environment, s.healthChecks()),
	}

	pages, err := web.New(s.Sessions, monitors, s.Drafts.Credentials, s.Drafts.Moderation, web.Options{
		SessionTTL:    s.Config.Session.TTL,
		SecureCookies: s.Config.Session.CookieSecure,
	})
	if err != nil {
		return err
	}
	s.Pages = pages

	return nil
}

func (s *Server) draftGroup() editor.Group {
	return editor.Group{s.Drafts.Credentials, s.Drafts.Moderation}
}

// healthChecks lists the dependencies /health reports on. Absent
// dependencies are left out rather than added as typed nil pointers.
func (s *Server) healthChecks() map[string]handlers.HealthChecker {
	checks := map[string]handlers.HealthChecker{}
	if s.Db != nil {
		checks["database"] = s.Db
	}
	if rs, ok := s.store.(*session.RedisStore); ok {
		checks["redis"] = rs
	}
	return checks
}

// GetRouter returns the configured router.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// Start starts the HTTP server and blocks until it fails or a shutdown
// signal arrives, then shuts down gracefully.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Str("backend_mode", s.Config.Backend.Mode).
			Str("session_store", s.Config.Session.Store).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	if err := s.SetupMaintenanceTasks(); err != nil {
		return err
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown stops maintenance jobs, waits for in-flight requests and closes
// the storage connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info().Msg("Server stopped gracefully")

	s.closeStorage()
	return nil
}

func (s *Server) closeStorage() {
	if s.Db != nil {
		s.Db.Close()
		log.Info().Msg("Database connection closed")
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
}

// SetupMaintenanceTasks schedules the background jobs:
//   - refreshing sessions whose access token is about to expire
//   - dropping editor drafts of idle sessions
//   - dropping idle rate limiters
func (s *Server) SetupMaintenanceTasks() error {
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) (int, error)
	}{
		{"session_refresh", s.Config.Maintenance.RefreshSweep, s.Sessions.RefreshExpiring},
		{"draft_sweep", s.Config.Maintenance.DraftSweep, func(context.Context) (int, error) {
			return s.draftGroup().Sweep(), nil
		}},
		{"limiter_sweep", s.Config.Maintenance.LimiterSweep, func(context.Context) (int, error) {
			return s.Limiter.Sweep(), nil
		}},
	}

	for _, job := range jobs {
		job := job
		if _, err := c.AddFunc(job.spec, func() { runJob(job.name, job.run) }); err != nil {
			return fmt.Errorf("invalid schedule %q for %s: %w", job.spec, job.name, err)
		}
	}

	c.Start()
	s.cron = c
	return nil
}

// runJob runs one maintenance job with a timeout and records its outcome.
func runJob(name string, run func(ctx context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	count, err := run(ctx)
	metrics.MaintenanceRunsTotal.WithLabelValues(name, metrics.Outcome(err)).Inc()
	if err != nil {
		log.Error().Err(err).Str("job", name).Msg("Maintenance job failed")
		return
	}
	if count > 0 {
		log.Info().Str("job", name).Int("count", count).Msg("Maintenance job finished")
	}
}
