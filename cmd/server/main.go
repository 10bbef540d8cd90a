// Package main is the entry point of the credit committee decision engine.
// It evaluates real-estate financing dossiers: normalized summaries,
// SmartScore pillars, decision lenses, acceptance probability, risk/return
// placement and stress tests, served over a REST API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelin/comite/internal/config"
	"github.com/avelin/comite/internal/database"
	"github.com/avelin/comite/internal/events"
	"github.com/avelin/comite/internal/modules/acceptance"
	"github.com/avelin/comite/internal/modules/decision"
	"github.com/avelin/comite/internal/modules/report"
	"github.com/avelin/comite/internal/modules/scoring"
	"github.com/avelin/comite/internal/modules/stress"
	"github.com/avelin/comite/internal/reliability"
	"github.com/avelin/comite/internal/scheduler"
	"github.com/avelin/comite/internal/server"
	"github.com/avelin/comite/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("version", report.EngineVersion).Msg("Starting comite")

	// Stores: durable dossiers, rebuildable report cache.
	dossierDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/dossiers.db",
		Profile: database.ProfileDurable,
		Name:    "dossiers",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open dossier store")
	}
	defer dossierDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/cache.db",
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache store")
	}
	defer cacheDB.Close()

	for _, store := range []*database.DB{dossierDB, cacheDB} {
		if err := store.Migrate(); err != nil {
			log.Fatal().Err(err).Str("store", store.Name()).Msg("Failed to migrate store")
		}
	}

	bus := events.NewBus(log)

	// Evaluation chain.
	scoringService := scoring.NewService(cfg.Thresholds, cfg.PillarSet, log)
	decisionBuilder := decision.NewBuilder(cfg.Decision, log)
	acceptanceModel := acceptance.NewModel()
	stressGenerator := stress.NewGenerator(scoringService, acceptanceModel, log)

	engine := report.NewEngine(scoringService, decisionBuilder, acceptanceModel, stressGenerator, log)
	repo := report.NewRepository(dossierDB)
	cache := report.NewCache(cacheDB, cfg.CacheTTL)
	reportService := report.NewService(engine, repo, cache, bus, log)

	// Background jobs.
	sched := scheduler.New(log)
	reevaluationJob := scheduler.NewReevaluationJob(reportService, bus, log)
	maintenanceJob := reliability.NewMaintenanceJob(
		[]*database.DB{dossierDB, cacheDB}, cache, bus, cfg.DataDir, log)

	if err := sched.AddJob("15 2 * * *", reevaluationJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register re-evaluation job")
	}
	if err := sched.AddJob("0 3 * * *", maintenanceJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}

	var backupJob *scheduler.BackupJob
	if cfg.Backup.Enabled() {
		s3Client, err := reliability.NewS3Client(
			cfg.Backup.Endpoint,
			cfg.Backup.Region,
			cfg.Backup.AccessKeyID,
			cfg.Backup.SecretAccessKey,
			cfg.Backup.Bucket,
			log,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 client")
		}
		backupService := reliability.NewBackupService(
			[]*database.DB{dossierDB}, s3Client, bus,
			cfg.DataDir, cfg.Backup.Prefix, report.EngineVersion, log)
		backupJob = scheduler.NewBackupJob(backupService, 30, log)
		if err := sched.AddJob("45 3 * * *", backupJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	} else {
		log.Info().Msg("Backups not configured, skipping backup job")
	}

	sched.Start()
	defer sched.Stop()

	// HTTP server.
	srv := server.New(server.Config{
		Log:           log,
		Config:        cfg,
		DossierDB:     dossierDB,
		CacheDB:       cacheDB,
		ReportService: reportService,
		Bus:           bus,
		Port:          cfg.Port,
		DevMode:       cfg.DevMode,
	})

	var backupSchedJob scheduler.Job
	if backupJob != nil {
		backupSchedJob = backupJob
	}
	srv.SetJobs(reevaluationJob, backupSchedJob, maintenanceJob)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server stopped")
}
