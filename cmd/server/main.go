package main

import (
	"context"
	"fmt"

	"github.com/avetrov/go-idm-core/internal/adapter"
	"github.com/avetrov/go-idm-core/internal/config"
	myHTTP "github.com/avetrov/go-idm-core/internal/handler/http"
	"github.com/avetrov/go-idm-core/internal/limiter"
	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/internal/server"
	"github.com/avetrov/go-idm-core/internal/service"
	"github.com/avetrov/go-idm-core/internal/store"
	"github.com/avetrov/go-idm-core/internal/workers"
	"github.com/avetrov/go-idm-core/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("idm-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	if err := migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	var loginLimiter service.LoginLimiter
	if cfg.Limiter.RedisAddress != "" {
		redisClient, err := limiter.Connect(ctx, cfg.Limiter)
		if err != nil {
			log.Fatal().Err(err).Msg("error connecting to redis")
		}
		defer redisClient.Close()

		loginLimiter = limiter.New(redisClient, cfg.Limiter, log)
	}

	dispatcher, err := adapter.NewEmailDispatcher(cfg.Notifier, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating email dispatcher")
	}

	notificationWorker := workers.NewNotificationWorker(ctx, dispatcher, cfg.Notifier, log)
	backgroundWorkers := workers.NewWorkers(notificationWorker)

	storages := store.NewStorages(db, log)
	services := service.NewServices(db, storages, dispatcher, notificationWorker, loginLimiter, *cfg, log)

	handler := myHTTP.NewHandler(services, log)

	srv, err := server.NewServer(handler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	backgroundWorkers.Run()
	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
