package main

import (
	"context"
	"net/http"

	"github.com/folioreads/folio/pkg/books"
	"github.com/folioreads/folio/pkg/config"
	"github.com/folioreads/folio/pkg/covers"
	"github.com/folioreads/folio/pkg/database"
	"github.com/folioreads/folio/pkg/jobs"
	"github.com/folioreads/folio/pkg/libraries"
	"github.com/folioreads/folio/pkg/metadata"
	"github.com/folioreads/folio/pkg/migrations"
	"github.com/folioreads/folio/pkg/notify"
	"github.com/folioreads/folio/pkg/refresh"
	"github.com/folioreads/folio/pkg/scan"
	"github.com/folioreads/folio/pkg/server"
	"github.com/folioreads/folio/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting folio", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	broker := notify.NewBroker()
	coverStore := covers.NewStore()
	bookService := books.NewService(db)
	jobService := jobs.NewService(db)
	libraryService := libraries.NewService(db)

	orchestrator := metadata.NewOrchestrator(
		metadata.NewGoogleBooks(),
		metadata.NewOpenLibrary(),
		metadata.NewGoodreads(),
	)

	throttle := refresh.NewRandomDelay(cfg.ThrottleMinDelay, cfg.ThrottleMaxDelay)
	refresher := refresh.NewRefresher(bookService, orchestrator, coverStore, broker, throttle)
	queue := refresh.NewQueue(jobService, refresher, cfg.RefreshQueueSize)

	processor := scan.NewProcessor(bookService, jobService, coverStore, broker)
	scheduler := scan.NewScheduler(processor, libraryService, cfg.ScanInterval)

	srv, err := server.New(cfg, db, server.Dependencies{
		Orchestrator: orchestrator,
		Queue:        queue,
		Scanner:      processor,
		Broker:       broker,
		CoverStore:   coverStore,
	})
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		log.Info("server started", logger.Data{"host": cfg.ServerHost, "port": cfg.ServerPort})
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	queue.Start()
	log.Info("refresh queue started")

	scheduler.Start()
	log.Info("scan scheduler started")

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	scheduler.Shutdown()
	log.Info("scan scheduler shutdown")

	err = queue.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("refresh queue shutdown error")
	}
	log.Info("refresh queue shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
