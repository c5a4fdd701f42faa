// Package main provides the survey command: load, normalize, aggregate and write reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"mhsurvey/internal/config"
	"mhsurvey/internal/logger"
	"mhsurvey/internal/pipeline"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	source := flag.String("source", "", "Survey CSV/XLSX path or URL (overrides config)")
	outDir := flag.String("out", "", "Output directory (overrides config)")
	formats := flag.String("formats", "", "Comma-separated output formats: json,markdown,svg")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	saveConfig := flag.String("save-config", "", "Write the effective configuration to this path and exit")

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

	applyFlags(cfg, *source, *outDir, *formats, *logLevel)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *saveConfig != "" {
		if err := cfg.SaveConfig(*saveConfig); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("💾 Configuration written to %s\n", *saveConfig)

		return
	}

	log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("🚀 Starting survey pipeline")
	fmt.Printf("📍 Source: %s\n", cfg.Source.GetSource())

	result, err := pipeline.NewRunner(cfg, log).Run(ctx)
	if err != nil {
		log.Error("pipeline failed", "error", err)
		fmt.Fprintf(os.Stderr, "❌ Pipeline failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ %s\n", result.Validation)
	result.Validation.PrintWarnings(os.Stdout)

	paths, err := pipeline.WriteOutputs(cfg, result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Writing outputs failed: %v\n", err)
		os.Exit(1)
	}

	report := result.Report

	fmt.Println("\n------------------------------------------------")
	fmt.Printf("📊 Summary Report\n")
	fmt.Println("------------------------------------------------")
	fmt.Printf("Run:              %s\n", report.RunID)
	fmt.Printf("Records:          %d\n", report.Summary.Records)
	fmt.Printf("Depression (Yes): %d of %d\n", report.Overview.Slices[0].Value, report.Overview.Total)
	fmt.Printf("Gender groups:    %d\n", len(report.GenderGroups))
	fmt.Printf("Parallel records: %d\n", len(report.Parallel.Records))
	fmt.Printf("Duration:         %v\n", result.Duration)

	for _, p := range paths {
		fmt.Printf("💾 %s\n", p)
	}

	fmt.Println("------------------------------------------------")
}

func applyFlags(cfg *config.Config, source, outDir, formats, logLevel string) {
	if source != "" {
		if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
			cfg.Source.URL, cfg.Source.Path = source, ""
		} else {
			cfg.Source.Path, cfg.Source.URL = source, ""
		}
	}

	if outDir != "" {
		cfg.Output.Dir = outDir
	}

	if formats != "" {
		cfg.Output.Formats = nil

		for _, f := range strings.Split(formats, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.Output.Formats = append(cfg.Output.Formats, f)
			}
		}
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}
