package app

import (
	"context"
	"crypto/rand"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ametelkin/onair-server/internal/auth"
	"github.com/ametelkin/onair-server/internal/config"
	"github.com/ametelkin/onair-server/internal/core"
	"github.com/ametelkin/onair-server/internal/session"
	"github.com/ametelkin/onair-server/internal/store"
	"github.com/ametelkin/onair-server/internal/store/sqlite"
	transporthttp "github.com/ametelkin/onair-server/internal/transport/http"
)

// App wires together the coordinator, transport, and journal layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	recorder        *core.Recorder
	store           store.Journal
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init journal store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("journal store initialized")

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		// Host tokens don't outlive the process anyway: all session state
		// is volatile, so a per-process random secret is acceptable.
		jwtSecret = make([]byte, 32)
		if _, err := rand.Read(jwtSecret); err != nil {
			st.Close()
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
	}

	jwtConfig := &auth.JWTConfig{
		Secret:   jwtSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      24 * time.Hour,
	}

	authService, err := auth.NewService(cfg.HostSecret, jwtConfig)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init auth service: %w", err)
	}
	if authService.Enabled() {
		logger.Info().Msg("host auth enabled")
	} else {
		logger.Warn().Msg("host auth disabled, any connection may claim the host role")
	}

	table := transporthttp.NewConnTable(logger)
	recorder := core.NewRecorder(st, logger)
	coord := core.NewCoordinator(session.New(), table, authService, recorder, logger)
	server := transporthttp.NewServer(coord, table, authService, st, *cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		recorder:        recorder,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.recorder.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

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

// cleanup closes the journal store.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close journal store")
		} else {
			a.log.Info().Msg("journal store closed")
		}
	}
}
