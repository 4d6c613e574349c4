package main

import (
	"flag"
	"log"
	"runtime"

	"finance-viewer/internal/app"
	"finance-viewer/internal/config"
	"finance-viewer/internal/logger"
	"finance-viewer/internal/shutdown"

	"fyne.io/fyne/v2"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file (default: ./"+config.DefaultFile+" if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel(), cfg.Log.JSON)
	appLogger.Info("Main", "configuration loaded", map[string]interface{}{
		"config_file": *configPath,
		"log_level":   cfg.LogLevel().String(),
		"go_version":  runtime.Version(),
		"num_cpu":     runtime.NumCPU(),
	})

	application, err := app.NewApplication(app.Options{
		Config: cfg,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error("Main", err, nil)
		log.Fatalf("Application initialization failed: %v", err)
	}

	shutdownMgr := shutdown.NewManager(appLogger, shutdown.DefaultTimeout)
	shutdownMgr.Register("application", application)
	shutdownMgr.OnComplete(func() {
		fyne.Do(application.Quit)
	})
	shutdownMgr.Listen()

	if err := application.Run(); err != nil {
		log.Fatalf("Application execution failed: %v", err)
	}

	log.Println("Application terminated successfully")
}
