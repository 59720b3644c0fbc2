package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/broiler/internal/config"
	"github.com/mamadbah2/broiler/internal/repository/memory"
	"github.com/mamadbah2/broiler/internal/repository/mongodb"
	"github.com/mamadbah2/broiler/internal/repository/sheets"
	"github.com/mamadbah2/broiler/internal/scheduler"
	"github.com/mamadbah2/broiler/internal/server/handlers"
	"github.com/mamadbah2/broiler/internal/server/router"
	"github.com/mamadbah2/broiler/internal/service/catching"
	"github.com/mamadbah2/broiler/internal/service/density"
	"github.com/mamadbah2/broiler/internal/service/feed"
	"github.com/mamadbah2/broiler/internal/service/flockdata"
	"github.com/mamadbah2/broiler/internal/service/growth"
	reportingsvc "github.com/mamadbah2/broiler/internal/service/reporting"
	"github.com/mamadbah2/broiler/internal/service/shrinkage"
	whatsappsvc "github.com/mamadbah2/broiler/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/broiler/pkg/clients/whatsapp"
	"github.com/mamadbah2/broiler/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var source flockdata.Source
	switch cfg.Storage.ReferenceSource {
	case config.ReferenceSheets:
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		source = sheets.NewReferenceSource(sheetsRepo, baseLogger.Named("repo.reference"))
	default:
		refStore, err := memory.LoadReferenceFile(cfg.Storage.ReferenceDataPath)
		if err != nil {
			baseLogger.Fatal("failed to load reference data file", zap.Error(err))
		}
		baseLogger.Info("reference data loaded from file", zap.String("path", cfg.Storage.ReferenceDataPath))
		source = refStore
	}

	var (
		sessionStore catching.SessionStore
		harvestStore catching.HarvestRecorder
	)
	switch cfg.Storage.Driver {
	case config.StorageMongoDB:
		connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		mongoRepo, err := mongodb.NewRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		sessionStore, harvestStore = mongoRepo, mongoRepo
	default:
		baseLogger.Warn("catch sessions are kept in memory and lost on restart")
		sessionStore, harvestStore = memory.NewSessionStore(), memory.NewHarvestStore()
	}

	planner, err := shrinkage.NewPlanner(cfg.Catching.ShrinkageFraction)
	if err != nil {
		baseLogger.Fatal("invalid shrinkage fraction", zap.Error(err))
	}
	analyzer := growth.NewAnalyzer(growth.NewCalculator(), planner)
	reportingSvc := reportingsvc.NewService(source, analyzer, baseLogger.Named("svc.reporting"))

	var (
		notifier   catching.Notifier
		sender     handlers.MessageSender
		runner     handlers.DigestRunner
		digestCron *scheduler.Scheduler
	)
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewNotifier(whatsClient, cfg.WhatsApp.ManagerID, baseLogger.Named("svc.whatsapp"))
		notifier, sender = messagingSvc, messagingSvc

		digestCron, err = scheduler.NewScheduler(cfg.Reporting, reportingSvc, messagingSvc, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := digestCron.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer digestCron.Stop()
		runner = digestCron
	} else {
		baseLogger.Warn("whatsapp token missing, notifications and digest disabled")
	}

	catchSvc := catching.NewService(sessionStore, harvestStore, source, planner, notifier, baseLogger.Named("svc.catching"))
	densitySvc := density.NewService(source, analyzer, baseLogger.Named("svc.density"))

	engine := router.New(router.Handlers{
		Analytics: handlers.NewAnalyticsHandler(source, analyzer, feed.NewAnalyzer(), planner, densitySvc, baseLogger.Named("handlers.analytics")),
		Catch:     handlers.NewCatchHandler(catchSvc, baseLogger.Named("handlers.catch")),
		Digest:    handlers.NewDigestHandler(reportingSvc, runner, sender, baseLogger.Named("handlers.digest")),
	}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
