package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"gopulse/adapters/api"
	"gopulse/internal/config"
	"gopulse/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	server := api.NewServer(appContainer.Service, appContainer.Logger, api.Config{
		Port:        appConfig.API.Port,
		ReadTimeout: appConfig.Server.ReadTimeout,
	})
	if err := server.Start(ctx); err != nil {
		appContainer.Logger.Error("api server stopped: %v", err)
	}
}
