package main

import (
	"log"

	"github.com/joho/godotenv"

	"amesdash/internal/config"
	"amesdash/internal/container"
	"amesdash/internal/logging"
	"amesdash/ui"
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

	// Start the dashboard. The dataset file is read lazily on the first
	// request; a missing file renders the no-data page, not a crash.
	webApp, err := ui.NewApp(appContainer.Analysis, ui.Config{Port: appConfig.Server.Port})
	if err != nil {
		log.Fatalf("Failed to create dashboard: %v", err)
	}

	if err := webApp.Start(); err != nil {
		log.Fatalf("Dashboard server stopped: %v", err)
	}
}
