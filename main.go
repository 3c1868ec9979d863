package main

import (
	"ShareVault/config"
	"ShareVault/internal/repo"
	"ShareVault/internal/storage"
	"ShareVault/internal/sweeper"
	"ShareVault/router"
	"ShareVault/utils"
	"context"
	"log"
	"os/signal"
	"syscall"
)

// main initializes services, starts the expiry sweeper and the HTTP server.
func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()
	storage.InitMinio()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sw := sweeper.New(
		repo.Db,
		storage.Default,
		config.AppConfig.SweepInterval,
		config.AppConfig.SweepBatchSize,
		utils.RetryPolicy{
			MaxAttempts: config.AppConfig.SweepRetryMax,
			Delay:       config.AppConfig.SweepRetryDelay,
		},
		sweeper.WithRedisLock(),
	)
	go sw.Run(ctx)

	r := router.InitRouter()
	if err := r.Run(":8000"); err != nil {
		log.Fatal("server error:", err)
	}
}
