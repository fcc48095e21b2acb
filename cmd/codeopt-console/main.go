package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"codeopt/internal/app"
	"codeopt/internal/config"
	"codeopt/internal/tui"
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

	report := pipeline.Ingest(cfg.Ingest.WorkbookPath, cfg.Ingest.JSONPath, cfg.Ingest.Force)

	m := tui.New(pipeline, report.Summary())
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
