// Package main provides the signer command-line tool for signing and verifying markdown reports.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"mhsurvey/internal/formatter"
	"mhsurvey/internal/pipeline"
	"mhsurvey/internal/validator"
	"mhsurvey/pkg/metadata"
)

func main() {
	inputPath := flag.String("input", "", "Path to markdown report (e.g., out/report.md)")
	verify := flag.Bool("verify", false, "Only verify the existing signature")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: signer -input <path> [-verify]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	contentBytes, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Error reading file: %v\n", err)
	}

	content := string(contentBytes)
	fmt.Printf("📂 Reading: %s (%d bytes)\n", *inputPath, len(content))

	if *verify {
		if err := validator.ValidateIntegrity(content); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}

		fmt.Println("✅ Signature valid")

		return
	}

	fmt.Println("🧹 Realigning tables...")

	meta, _ := metadata.Extract(content)
	if meta == nil {
		meta = &metadata.Metadata{Validation: true}
	}

	formatted, err := formatter.FormatMarkdown(content)
	if err != nil {
		log.Fatalf("❌ Formatting failed: %v\n", err)
	}

	fmt.Println("✍️  Signing file...")

	signed := metadata.Sign(formatted, metadata.Metadata{
		Version:    pipeline.Version,
		RunID:      meta.RunID,
		Validation: meta.Validation,
	})

	if err := os.WriteFile(*inputPath, []byte(signed), 0644); err != nil {
		log.Fatalf("Error writing file: %v\n", err)
	}

	fmt.Printf("✅ Signed and saved to: %s\n", *inputPath)
}
