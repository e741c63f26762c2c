package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/TomHarkness/TransparentBalanceApp/internal/basiq"
	"github.com/TomHarkness/TransparentBalanceApp/internal/cache"
	"github.com/TomHarkness/TransparentBalanceApp/internal/server/config"
	"github.com/TomHarkness/TransparentBalanceApp/internal/server/httpapi"
	"github.com/TomHarkness/TransparentBalanceApp/internal/server/logging"
	"github.com/TomHarkness/TransparentBalanceApp/internal/server/repository/sqlite"
	"github.com/TomHarkness/TransparentBalanceApp/internal/server/service"
	"github.com/TomHarkness/TransparentBalanceApp/internal/tokenstore"
)

type App struct {
	version   string
	buildDate string
	logger    *slog.Logger
	server    *http.Server
	repoClose io.Closer
}

func New(version, buildDate string) (*App, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging)

	repo, err := sqlite.New(cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	tokens := tokenstore.New(filepath.Join(cfg.StateDir, "access_token.json"))
	resources := cache.New(cfg.StateDir)
	provider := basiq.NewClient(basiq.Config{
		BaseURL:      cfg.Basiq.BaseURL,
		ClientID:     cfg.Basiq.ClientID,
		ClientSecret: cfg.Basiq.ClientSecret,
		Timeout:      cfg.Basiq.Timeout,
	}, tokens, logger)

	services := service.NewServices(provider, resources, repo, cfg, logger)
	router := httpapi.NewRouter(services, logger)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &App{version: version, buildDate: buildDate, logger: logger, server: server, repoClose: repo}, nil
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() { _ = a.repoClose.Close() }()

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("http server error", "err", err)
		}
	}()

	a.logger.Info("balance broker listening", "version", a.version, "build", a.buildDate, "addr", a.server.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}
