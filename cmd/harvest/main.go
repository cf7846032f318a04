package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/papertrawl/internal/config"
	"github.com/timmy/papertrawl/internal/domain"
	"github.com/timmy/papertrawl/internal/harvest"
	"github.com/timmy/papertrawl/internal/logger"
	"github.com/timmy/papertrawl/internal/oai"
	"github.com/timmy/papertrawl/internal/partition"
	"github.com/timmy/papertrawl/internal/repository"
	"github.com/timmy/papertrawl/internal/state"
	"github.com/timmy/papertrawl/internal/storage"
	"github.com/timmy/papertrawl/internal/taxonomy"
	"github.com/timmy/papertrawl/internal/transform"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logger first (env-configured, with rotation outside local)
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	ingestOnly := flag.Bool("ingest-only", false, "Run the harvest step only")
	transformOnly := flag.Bool("transform-only", false, "Run the transform step only")
	modeFlag := flag.String("mode", "", "Harvest mode override: date or global")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Error("Failed to load config")
		return ExitFailure
	}
	if *modeFlag != "" {
		cfg.Harvest.Mode = *modeFlag
	}
	if !domain.HarvestMode(cfg.Harvest.Mode).Valid() {
		appLogger.WithField("mode", cfg.Harvest.Mode).Error("Unknown harvest mode, expected date or global")
		return ExitFailure
	}

	appLogger.WithFields(logger.Fields{
		"mode":           cfg.Harvest.Mode,
		"data_dir":       cfg.Harvest.DataDir,
		"time_budget":    cfg.Harvest.TimeBudget.String(),
		"ingest_only":    *ingestOnly,
		"transform_only": *transformOnly,
	}).Info("Starting harvest process")

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Error("Failed to initialize database")
		return ExitFailure
	}

	stateStore := state.NewStore(db)
	runRepo := repository.NewRunRepository(db)
	paperRepo := repository.NewPaperRepository(db)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// Initialize S3-compatible storage (supports R2, S3, etc.) when enabled;
	// otherwise the uploader degrades to a local-only no-op.
	var objectStorage storage.ObjectStorage
	if cfg.Storage.Enabled {
		objectStorage, err = storage.NewStorage(&storage.S3Config{
			Type:      storage.StoreType(cfg.Storage.Type),
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
		})
		if err != nil {
			appLogger.WithError(err).Error("Failed to initialize storage")
			return ExitFailure
		}

		// Ensure bucket exists
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Error("Failed to ensure bucket exists")
			return ExitFailure
		}
	}
	uploader := partition.NewUploader(objectStorage, cfg.Storage.Prefix)

	needsContinuation := false

	if !*transformOnly {
		writer, err := partition.NewWriter(cfg.Harvest.DataDir)
		if err != nil {
			appLogger.WithError(err).Error("Failed to initialize partition writer")
			return ExitFailure
		}

		client := oai.NewClient(&oai.Config{
			BaseURL:        cfg.OAI.BaseURL,
			MetadataPrefix: cfg.OAI.MetadataPrefix,
			Timeout:        cfg.OAI.RequestTimeout,
			BusyWait:       cfg.OAI.BusyWait,
		})
		pager := harvest.NewPager(client, cfg.OAI.PageDelay)

		runner := harvest.NewRunner(pager, stateStore, writer, uploader, runRepo, harvest.Config{
			Mode:             domain.HarvestMode(cfg.Harvest.Mode),
			EpochDate:        cfg.Harvest.EpochDate,
			FreshnessLagDays: cfg.Harvest.FreshnessLagDays,
			TimeBudget:       cfg.Harvest.TimeBudget,
			DataDir:          cfg.Harvest.DataDir,
		})

		more, err := runner.Run(ctx)
		if err != nil {
			appLogger.WithError(err).Error("Harvest failed")
			return ExitFailure
		}
		needsContinuation = more
	}

	// The transform diffs fetched minus transformed dates, so it is a no-op
	// when the harvest produced nothing new (including global mode, which
	// writes no date partitions).
	if !*ingestOnly {
		tr := transform.NewTransformer(stateStore, paperRepo, taxonomy.Load(), cfg.Harvest.DataDir)
		if err := tr.Run(ctx); err != nil {
			appLogger.WithError(err).Error("Transform failed")
			return ExitFailure
		}
	}

	if needsContinuation {
		appLogger.Info("Work remains, requesting continuation")
		return ExitNeedsContinuation
	}
	appLogger.Info("Caught up")
	return ExitCaughtUp
}
