// Package main provides the normalizer command-line tool: survey table in, typed records out.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"mhsurvey/internal/config"
	"mhsurvey/internal/loader"
	"mhsurvey/internal/logger"
	"mhsurvey/internal/normalizer"
)

func main() {
	inputPath := flag.String("input", "", "Path to survey file (e.g., data/mental.csv)")
	outputPath := flag.String("output", "", "Path to output JSON file")
	format := flag.String("format", "", "Input format: csv or xlsx (default: by extension)")
	sheet := flag.String("sheet", "", "Worksheet name for xlsx input (default: first sheet)")
	verbose := flag.Bool("verbose", false, "Log every absent field")
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		fmt.Println("Usage: normalizer -input <mental.csv> -output <records.json>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := "info"
	if *verbose {
		level = "debug"
	}

	logs := logger.NewLogger(level)
	cfg := config.Default()
	src := config.SourceConfig{Path: *inputPath, Format: *format, Sheet: *sheet}

	fmt.Printf("📂 Reading: %s\n", *inputPath)

	table, err := loader.NewLoader(loader.NewFetcher(&cfg.Retry, logs), logs).Load(context.Background(), src)
	if err != nil {
		log.Fatalf("Error loading survey: %v\n", err)
	}

	fmt.Printf("🔍 Detected Format: %s (%d columns, %d rows)\n", src.ResolveFormat(), len(table.Headers), len(table.Records))

	records, err := normalizer.NewProcessor(logs).Process(table.Records)
	if err != nil {
		log.Fatalf("Error normalizing: %v\n", err)
	}

	complete := 0

	for _, r := range records {
		if r.CGPA.Present() && r.Age.Present() && r.YearOfStudy.Present() {
			complete++
		}
	}

	fmt.Printf("📊 Normalized: %d records, %d with CGPA, age and year present\n", len(records), complete)

	if mkdirErr := os.MkdirAll(filepath.Dir(*outputPath), 0755); mkdirErr != nil {
		log.Fatalf("Error creating directory: %v\n", mkdirErr)
	}

	jsonData, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling JSON: %v\n", err)
	}

	if err := os.WriteFile(*outputPath, jsonData, 0644); err != nil {
		log.Fatalf("Error writing file: %v\n", err)
	}

	fmt.Printf("✅ Saved to: %s\n", *outputPath)
}
