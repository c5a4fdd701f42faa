package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"mhsurvey/internal/config"
	"mhsurvey/internal/formatter"
	"mhsurvey/internal/render"
	"mhsurvey/pkg/metadata"
)

// Output file names inside the configured directory.
const (
	ReportJSONFile     = "report.json"
	ReportMarkdownFile = "report.md"
	DashboardSVGFile   = "dashboard.svg"
)

// EncodeJSON serializes the report.
func EncodeJSON(result *Result, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(result.Report, "", "  ")
	}

	return json.Marshal(result.Report)
}

// EncodeMarkdown renders and signs the markdown report.
func EncodeMarkdown(result *Result, title string) []byte {
	content := formatter.Report(result.Report, title)

	signed := metadata.Sign(content, metadata.Metadata{
		LastModify: result.Report.GeneratedAt,
		Version:    Version,
		RunID:      result.Report.RunID,
		Validation: result.Validation == nil || result.Validation.IsValid,
	})

	return []byte(signed)
}

// EncodeSVG renders the dashboard.
func EncodeSVG(result *Result, layout render.Layout) []byte {
	var buf bytes.Buffer

	render.Dashboard(&buf, result.Report, layout)

	return buf.Bytes()
}

// WriteOutputs writes every configured format into cfg.Output.Dir and returns the paths.
func WriteOutputs(cfg *config.Config, result *Result) ([]string, error) {
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string

	write := func(name string, data []byte) error {
		path := cfg.GetOutputPath(name)

		if cfg.Output.CreateBackup {
			if _, err := os.Stat(path); err == nil {
				if err := os.Rename(path, path+".bak"); err != nil {
					return fmt.Errorf("failed to back up %s: %w", path, err)
				}
			}
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		written = append(written, path)

		return nil
	}

	if cfg.WantsFormat(config.FormatJSON) {
		data, err := EncodeJSON(result, cfg.Output.PrettyPrint)
		if err != nil {
			return written, fmt.Errorf("failed to encode report: %w", err)
		}

		if err := write(ReportJSONFile, data); err != nil {
			return written, err
		}
	}

	if cfg.WantsFormat(config.FormatMarkdown) {
		if err := write(ReportMarkdownFile, EncodeMarkdown(result, cfg.Render.Title)); err != nil {
			return written, err
		}
	}

	if cfg.WantsFormat(config.FormatSVG) {
		if err := write(DashboardSVGFile, EncodeSVG(result, render.FromConfig(cfg.Render))); err != nil {
			return written, err
		}
	}

	return written, nil
}
