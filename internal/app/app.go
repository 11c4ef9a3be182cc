package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linkhoard/linkhoard/internal/config"
	"github.com/linkhoard/linkhoard/internal/httpserver"
	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
	"github.com/linkhoard/linkhoard/internal/importer"
	"github.com/linkhoard/linkhoard/internal/logger"
	"github.com/linkhoard/linkhoard/internal/session"
	"github.com/linkhoard/linkhoard/internal/store"
	"github.com/linkhoard/linkhoard/internal/version"
	"github.com/linkhoard/linkhoard/internal/wordpress"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	store        *store.Store
	redisSession *session.Redis // nil when using in-process sessions
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	loggerClient.Infof("Opening database at %s", cfg.DBPath)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		loggerClient.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}

	// Sessions live in Redis when an address is configured, so logins
	// survive restarts; otherwise in process.
	var (
		sessions     session.Store
		redisSession *session.Redis
	)
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisSession, err = session.NewRedis(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		sessions = redisSession
	} else {
		sessions = session.NewMemory()
	}

	engine := importer.New(st, loggerClient)

	wp := wordpress.New(wordpress.Config{
		BaseURL:        cfg.WPBaseURL,
		User:           cfg.WPUser,
		AppPassword:    cfg.WPAppPassword,
		PostTags:       cfg.WPPostTags,
		PostCategories: cfg.WPPostCategories,
	})
	if wp.Configured() {
		loggerClient.Info("WordPress publishing enabled", logger.String("base_url", cfg.WPBaseURL))
	} else {
		loggerClient.Info("WordPress publishing not configured")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		Store:             st,
		Sessions:          sessions,
		Importer:          engine,
		WordPress:         wp,
		AdminPassword:     cfg.AdminPassword,
		SessionTTL:        cfg.SessionTTL,
		AllowedOrigins:    cfg.AllowedOrigins,
		TrustProxy:        cfg.TrustProxy,
		LoginRateBurst:    cfg.LoginRateBurst,
		LoginRateInterval: cfg.LoginRateInterval,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       server,
		store:        st,
		redisSession: redisSession,
	}
}

func (a *App) Run() error {
	a.logger.Infof("Starting linkhoard %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisSession != nil {
		if err := a.redisSession.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	}

	a.logger.Info("linkhoard stopped cleanly")
	return nil
}
