package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"

	"cafeDesk/cmd/buildCFG"
	"cafeDesk/internal/api/api"
	rabbitReader "cafeDesk/internal/consumerWorker"
	"cafeDesk/internal/mailer"
	"cafeDesk/internal/rabbit"
	"cafeDesk/internal/repo"
	"cafeDesk/internal/service"
	"cafeDesk/internal/session"
	"cafeDesk/internal/storage"
)

func main() {
	zlog.Init()
	log := zlog.Logger

	cfg := config.New()
	if err := cfg.Load("config.yaml", "", "CAFE"); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)

	masterDSN, slaveDSNs, poolOptions, err := buildCFG.BuildDBConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build DB config")
	}
	if err := repo.RunMigrations(masterDSN, buildCFG.BuildMigrationsPath(cfg), &log); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	db, err := dbpg.New(masterDSN, slaveDSNs, poolOptions)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer db.Master.Close()

	repository, err := repo.NewRepository(db, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize repository")
	}
	log.Info().Msg("database connected successfully")

	storageCfg, err := buildCFG.BuildStorageConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build storage config")
	}
	bucket, err := storage.NewBucket(storageCfg.Dir, storageCfg.Bucket, storageCfg.PublicBaseURL, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage bucket")
	}

	redisCfg, err := buildCFG.BuildRedisConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build Redis config")
	}
	redisClient, err := session.NewRedisClient(redisCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	adminCfg, err := buildCFG.BuildAdminConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build admin config")
	}
	sessions := session.NewRedisStore(redisClient, adminCfg.SessionTTL)

	rabbitCfg, err := buildCFG.BuildRabbitConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load RabbitMQ config")
	}
	rmq, err := rabbit.NewRabbit(rabbitCfg.Config, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	smtpCfg, err := buildCFG.BuildSMTPConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build SMTP config")
	}
	mail := mailer.New(smtpCfg, &log)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	reader := rabbitReader.NewReader(rmq, repository, mail, &log)
	reader.Start(workerCtx)

	serviceInstance := service.NewService(repository, &log, bucket, rmq, sessions, service.Settings{
		AdminPasswordHash: adminCfg.PasswordHash,
		SessionTTL:        adminCfg.SessionTTL,
		SecureCookie:      adminCfg.SecureCookie,
		ReminderDelay:     rabbitCfg.ReminderDelay,
	})
	app := api.NewRouters(&api.Routers{
		Service:  serviceInstance,
		Sessions: sessions,
		Log:      &log,
		Mode:     serverCfg.Mode,
		Static:   []api.StaticDir{{Route: bucket.RoutePath(), Dir: bucket.Dir()}},
	})

	srv := &http.Server{
		Addr:              ":" + serverCfg.Port,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Str("port", serverCfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Str("signal", sig.String()).Msg("initiating shutdown")
	case err := <-serverErrChan:
		log.Error().Err(err).Msg("server error")
	}

	cancelWorkers()
	reader.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error shutting down server")
	}

	log.Info().Msg("shutdown complete")
}
