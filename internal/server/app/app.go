package app

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/felippeximenes/modeloloja/internal/server/config"
	"github.com/felippeximenes/modeloloja/internal/server/httpapi"
	"github.com/felippeximenes/modeloloja/internal/server/melhorenvio"
	"github.com/felippeximenes/modeloloja/internal/server/repository/mongodb"
	"github.com/felippeximenes/modeloloja/internal/server/service"
)

type App struct {
	version   string
	buildDate string
	logger    *log.Logger
	server    *http.Server
	repo      *mongodb.Repository
}

func New(version, buildDate string, logger *log.Logger) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	repo, err := mongodb.New(ctx, cfg.MongoURL, cfg.DBName)
	if err != nil {
		return nil, err
	}

	gw := melhorenvio.New(cfg.MelhorEnvio.BaseURL(), cfg.MelhorEnvio.UserAgent)
	services := service.NewServices(repo, cfg, gw)
	router := httpapi.NewRouter(services, cfg, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &App{version: version, buildDate: buildDate, logger: logger, server: server, repo: repo}, nil
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Printf("http server error: %v", err)
		}
	}()

	a.logger.Printf("modeloloja server %s (%s) listening on %s", a.version, a.buildDate, a.server.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.server.Shutdown(shutdownCtx)
	if closeErr := a.repo.Close(shutdownCtx); err == nil {
		err = closeErr
	}
	return err
}
