package main

import (
	"log"

	"github.com/joho/godotenv"

	"amesdash/internal/api"
	"amesdash/internal/config"
	"amesdash/internal/container"
	"amesdash/internal/logging"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Configure(appConfig.Log.Level)

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	server := api.NewServer(appContainer.Analysis, appContainer.Source, api.Config{
		Port: appConfig.Server.APIPort,
		Mode: appConfig.Server.GinMode,
	})

	if err := server.Start(); err != nil {
		log.Fatalf("API server stopped: %v", err)
	}
}
