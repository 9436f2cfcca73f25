// Package server initializes and runs the vault server: it validates the
// startup configuration, derives the master key, opens the database, runs
// migrations, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/okolodev/credvault/internal/cryptox"
	"github.com/okolodev/credvault/internal/logging"
	"github.com/okolodev/credvault/internal/server/config"
	"github.com/okolodev/credvault/internal/server/httpapi"
	"github.com/okolodev/credvault/internal/server/repositories/repomanager"
	"github.com/okolodev/credvault/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	api    *httpapi.Server
}

// NewApp wires the application. Configuration errors (missing DSN, signing
// secret, or encryption key) are returned to the caller and abort startup;
// there is no recovery path for them.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// The master key is derived exactly once; the cipher holds it for the
	// process lifetime and it is shared read-only across requests.
	masterKey, err := cryptox.NormalizeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	cipher, err := cryptox.NewCipher(masterKey)
	if err != nil {
		return nil, err
	}

	db, err := repomanager.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	us := services.NewUserService(db, rm, cfg)
	fs := services.NewFolderService(db, rm)
	cs := services.NewCredentialService(db, rm, cipher)

	api := httpapi.NewServer(cfg.EndpointAddr, logger, us, fs, cs)

	return &App{config: cfg, logger: logger, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.api.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
}
