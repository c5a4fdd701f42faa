// Package main serves the survey dashboard over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mhsurvey/internal/config"
	"mhsurvey/internal/dashboard"
	"mhsurvey/internal/logger"
	"mhsurvey/internal/pipeline"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	source := flag.String("source", "", "Survey CSV/XLSX path (overrides config)")

	flag.Parse()

	if _, err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadUnvalidated(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if *source != "" {
		cfg.Source.Path, cfg.Source.URL = *source, ""
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	srv, err := dashboard.NewServer(cfg, pipeline.NewRunner(cfg, log), log)
	if err != nil {
		log.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🚀 Dashboard listening on %s\n", cfg.Server.Addr)
	fmt.Printf("📍 Source: %s\n", cfg.Source.GetSource())

	if err := srv.ListenAndServe(ctx); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}

	fmt.Println("👋 Dashboard stopped")
}
