package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os/signal"
	"syscall"

	"gopulse/internal/config"
	"gopulse/internal/container"
	"gopulse/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
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
	logger := appContainer.Logger

	uiConfig := ui.Config{
		Port:           appConfig.Server.Port,
		GinMode:        appConfig.Server.GinMode,
		ReadTimeout:    appConfig.Server.ReadTimeout,
		MaxUploadBytes: appConfig.Data.MaxUploadBytes,
	}
	if appContainer.ExampleTable != nil {
		uiConfig.ExampleTable = appContainer.ExampleTable
		uiConfig.ExampleName = appContainer.ExampleTable.Name
	}

	server, err := ui.NewServer(appContainer.Service, logger, uiConfig)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			logger.Info("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			logger.Info("View profiles: go tool pprof -http=:8082 http://localhost:%s/debug/pprof/profile?seconds=30", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil { //nolint:gosec // local profiling only
				logger.Error("pprof server failed: %v", err)
			}
		}()
	}

	if err := server.Start(ctx); err != nil {
		logger.Error("server stopped: %v", err)
	}
}
