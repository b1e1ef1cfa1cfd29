package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/codecollab/codecollab-server/internal/auth"
	"github.com/codecollab/codecollab-server/internal/bus"
	"github.com/codecollab/codecollab-server/internal/config"
	"github.com/codecollab/codecollab-server/internal/core"
	"github.com/codecollab/codecollab-server/internal/exec"
	"github.com/codecollab/codecollab-server/internal/store"
	"github.com/codecollab/codecollab-server/internal/store/sqlite"
	transporthttp "github.com/codecollab/codecollab-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	execHandlers    *transporthttp.ExecHandlers
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	bus             *bus.Redis
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	// Redis fanout is optional. Single-instance deployments run
	// without it.
	var redisBus *bus.Redis
	var hubBus core.Bus
	if cfg.RedisAddr != "" {
		redisBus, err = bus.NewRedis(ctx, cfg.RedisAddr, cfg.RedisDB, logger)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("init redis bus: %w", err)
		}
		hubBus = redisBus
		logger.Info().Str("redis_addr", cfg.RedisAddr).Msg("redis bus connected")
	}

	hub := core.NewHub(st, hubBus, logger, cfg.ChatReplayLimit)
	execClient := exec.New(cfg.ExecBaseURL, cfg.ExecTimeout, logger)

	server, execHandlers := transporthttp.NewServer(transporthttp.ServerDeps{
		Hub:         hub,
		AuthService: authService,
		Store:       st,
		ExecClient:  execClient,
	}, *cfg, logger)

	return &App{
		server:          server,
		execHandlers:    execHandlers,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		bus:             redisBus,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	if a.bus != nil {
		go a.bus.Subscribe(ctx, a.hub.ApplyRemote)
	}

	limiterStop := make(chan struct{})
	a.execHandlers.StartLimiter(limiterStop)
	defer close(limiterStop)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.bus != nil {
		a.bus.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
