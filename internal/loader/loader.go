// Package loader reads the survey table into raw records.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"mhsurvey/internal/config"
	"mhsurvey/internal/logger"
	"mhsurvey/internal/models"

	"github.com/xuri/excelize/v2"
)

// Loader errors. Both are fatal for a pipeline run.
var (
	ErrSourceUnreadable = errors.New("source unreadable")
	ErrMissingColumn    = errors.New("missing required column")
)

// Table is a parsed source: header labels plus one RawRecord per data row.
type Table struct {
	Headers []string
	Records []models.RawRecord
}

// HasColumn reports whether the header row contains column.
func (t *Table) HasColumn(column string) bool {
	for _, h := range t.Headers {
		if h == column {
			return true
		}
	}

	return false
}

// CheckColumns returns ErrMissingColumn naming every required column not in the header.
func (t *Table) CheckColumns(required []string) error {
	var missing []string

	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %q", ErrMissingColumn, missing)
	}

	return nil
}

// Parse decodes data as "csv" or "xlsx". sheet selects the worksheet for xlsx; empty
// means the first sheet.
func Parse(data []byte, format, sheet string) (*Table, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(format) {
	case "", "csv":
		rows, err = readCSV(data)
	case "xlsx":
		rows, err = readXLSX(data, sheet)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrSourceUnreadable, format)
	}

	if err != nil {
		return nil, err
	}

	return buildTable(rows)
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse CSV: %w", ErrSourceUnreadable, err)
	}

	return rows, nil
}

func readXLSX(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %w", ErrSourceUnreadable, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrSourceUnreadable)
		}

		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %s: %w", ErrSourceUnreadable, sheet, err)
	}

	return rows, nil
}

// buildTable turns raw rows into a Table. Header labels are trimmed; data cells are not.
// Short rows read as "" for their missing trailing cells.
func buildTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrSourceUnreadable)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}

		headers[i] = strings.TrimSpace(h)
	}

	records := make([]models.RawRecord, 0, len(rows)-1)

	for _, row := range rows[1:] {
		fields := make(map[string]string, len(headers))

		for j, h := range headers {
			if h == "" {
				continue
			}

			if j < len(row) {
				fields[h] = row[j]
			} else {
				fields[h] = ""
			}
		}

		records = append(records, models.NewRawRecord(fields))
	}

	return &Table{Headers: headers, Records: records}, nil
}

// Loader fetches and parses the survey source.
type Loader struct {
	fetcher *Fetcher
	log     *logger.Logger
}

// NewLoader creates a loader around fetcher.
func NewLoader(fetcher *Fetcher, log *logger.Logger) *Loader {
	return &Loader{fetcher: fetcher, log: log}
}

// Load fetches src, parses it and checks the required survey columns.
func (l *Loader) Load(ctx context.Context, src config.SourceConfig) (*Table, error) {
	fetched, err := l.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	format := src.ResolveFormat()

	table, err := Parse(fetched.Data, format, src.Sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fetched.Origin, err)
	}

	if err := table.CheckColumns(models.RequiredColumns); err != nil {
		return nil, fmt.Errorf("%s: %w", fetched.Origin, err)
	}

	l.log.Info("source loaded",
		"origin", fetched.Origin,
		"format", format,
		"bytes", len(fetched.Data),
		"columns", len(table.Headers),
		"rows", len(table.Records),
		"duration", fetched.Duration,
	)

	return table, nil
}
