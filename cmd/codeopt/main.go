package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"codeopt/internal/app"
	"codeopt/internal/config"
	"codeopt/internal/server"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/codeopt/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := app.SetupLogger(cfg.Log)

	pipeline, err := app.BuildPipeline(cfg, logger)
	if err != nil {
		log.Fatalf("failed to assemble pipeline: %v", err)
	}

	// Startup ingestion never blocks serving: degradation paths inside
	// report zero records and the service answers without context.
	report := pipeline.Ingest(cfg.Ingest.WorkbookPath, cfg.Ingest.JSONPath, cfg.Ingest.Force)
	logger.Info(report.Summary())

	srv := server.New(pipeline, logger)
	if err := srv.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
