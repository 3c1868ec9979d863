package main

import (
	"ShareVault/config"
	"ShareVault/internal/repo"
	"ShareVault/internal/worker"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	config.InitConfig()
	repo.InitMysql()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("access log worker started")
	if err := worker.RunAccessLogWorker(ctx); err != nil {
		log.Fatalf("access log worker stopped: %v", err)
	}
}
