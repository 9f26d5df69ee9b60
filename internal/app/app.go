// Package app wires configuration, storage, clients, and services into the
// shared application core used by cmd/foliosync-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/foliosync/internal/clients/brokerage"
	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/interfaces"
	"github.com/bobmcallan/foliosync/internal/services/aggregate"
	"github.com/bobmcallan/foliosync/internal/services/credential"
	"github.com/bobmcallan/foliosync/internal/services/dividend"
	syncsvc "github.com/bobmcallan/foliosync/internal/services/sync"
	"github.com/bobmcallan/foliosync/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config             *common.Config
	Logger             *common.Logger
	Storage            interfaces.StorageManager
	BrokerageClient    interfaces.BrokerageClient
	Credentials        interfaces.CredentialProvider
	SyncService        interfaces.SyncService
	AggregationService interfaces.AggregationService
	Coordinator        *syncsvc.Coordinator
	StartupTime        time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services. configPath may be empty,
// in which case FOLIOSYNC_CONFIG and the binary directory are consulted.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FOLIOSYNC_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "foliosync.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/foliosync.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client := brokerage.NewClient(
		brokerage.WithBaseURL(config.Clients.Brokerage.BaseURL),
		brokerage.WithLogger(logger),
		brokerage.WithRateLimit(config.Clients.Brokerage.RateLimit),
		brokerage.WithTimeout(config.Clients.Brokerage.GetTimeout()),
		brokerage.WithExchangeOffset(config.Clients.Brokerage.ExchangeOffsetMinutes),
	)

	credentials := credential.NewProvider(storageManager.Owners(), logger)
	aggregation := aggregate.NewService(storageManager, logger)
	dividends := dividend.NewCalculator(logger)

	syncService := syncsvc.NewService(
		storageManager,
		client,
		credentials,
		dividends,
		aggregation,
		client,
		logger,
		config.Sync,
	)

	coordinator := syncsvc.NewCoordinator(
		storageManager.Owners(),
		syncService,
		logger,
		config.Sync.BatchSize,
		config.Sync.GetBatchDelay(),
	)

	app := &App{
		Config:             config,
		Logger:             logger,
		Storage:            storageManager,
		BrokerageClient:    client,
		Credentials:        credentials,
		SyncService:        syncService,
		AggregationService: aggregation,
		Coordinator:        coordinator,
		StartupTime:        startupStart,
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("version", common.GetVersion()).
		Dur("elapsed", time.Since(startupStart)).
		Msg("App initialized")

	return app, nil
}

// StartScheduler launches the periodic incremental bulk sync loop.
func (a *App) StartScheduler() {
	interval := a.Config.Sync.GetSchedulerInterval()
	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel

	go startSyncScheduler(ctx, a.Coordinator, a.Logger, interval)
	a.Logger.Info().Dur("interval", interval).Msg("Sync scheduler started")
}

// Close stops background work and releases resources.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage")
		}
	}
}
