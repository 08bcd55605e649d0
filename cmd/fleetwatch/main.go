package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"fleetwatch/internal/config"
	"fleetwatch/internal/httpapi"
	"fleetwatch/internal/logger"
	"fleetwatch/internal/repository"
	"fleetwatch/internal/service"
	"fleetwatch/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	clock := service.NewClock()

	// 设置存储：Redis 可选，未启用时退回进程内 KV
	var kv store.KV
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		kv = store.NewRedisKV(redisClient)
		log.Info("Redis enabled for settings store", zap.String("addr", cfg.Redis.Addr))
	} else {
		kv = store.NewMemoryKV()
		log.Info("Using in-memory settings store")
	}

	repos := repository.NewRepos()
	repository.Seed(context.Background(), repos, clock.Now())

	scope := service.NewScopeService(repos, log)
	devices := service.NewDeviceService(repos, scope, log)
	tickets := service.NewTicketService(repos, scope, clock, log)
	alerts := service.NewAlertService(repos, scope, log)
	notifications := service.NewNotificationService(repos, scope, log)
	users := service.NewUserService(repos, log)
	settings := service.NewSettingsService(kv, log)
	reports := service.NewReportService(repos, clock, log)
	history := service.NewHistoryService(service.NewMemoryHandleStore(), clock, cfg.Report, log)

	identity := httpapi.NewIdentity(repos.Users)
	router := httpapi.NewRouter(log)
	router.RegisterAPIRoutes(
		httpapi.NewSiteHandler(repos, scope, identity, log),
		httpapi.NewDeviceHandler(devices, identity, log),
		httpapi.NewTicketHandler(tickets, identity, log),
		httpapi.NewAlertHandler(alerts, identity, log),
		httpapi.NewNotificationHandler(notifications, identity, log),
		httpapi.NewUserHandler(users, identity, log),
		httpapi.NewSettingsHandler(settings, identity, log),
		httpapi.NewReportHandler(reports, history, scope, identity, clock, log),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server exited", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	history.Close()
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
