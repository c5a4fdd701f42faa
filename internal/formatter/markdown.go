// Package formatter renders survey reports as markdown with display-width aligned tables.
package formatter

import (
	"strings"
	"time"

	"mhsurvey/pkg/metadata"

	"github.com/mattn/go-runewidth"
)

// minColumnWidth keeps separator cells at least "---".
const minColumnWidth = 3

// FormatMarkdown realigns every table in content. An existing metadata block is carried
// over and re-signed against the reformatted content.
func FormatMarkdown(content string) (string, error) {
	meta, clean := metadata.Extract(content)

	lines := strings.Split(clean, "\n")
	formatted := make([]string, 0, len(lines))

	var tableBuffer []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			tableBuffer = append(tableBuffer, line)
			continue
		}

		if len(tableBuffer) > 0 {
			formatted = append(formatted, realign(tableBuffer)...)
			tableBuffer = nil
		}

		formatted = append(formatted, line)
	}

	if len(tableBuffer) > 0 {
		formatted = append(formatted, realign(tableBuffer)...)
	}

	out := strings.Join(formatted, "\n")
	if meta == nil {
		return out, nil
	}

	meta.LastModify = time.Time{}

	return metadata.Sign(out, *meta), nil
}

// realign parses raw table lines and writes them back aligned. Blocks shorter than a
// header plus separator are returned unchanged.
func realign(rows []string) []string {
	if len(rows) < 2 {
		return rows
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, splitRow(row))
	}

	if !isSeparator(cells[1]) {
		return rows
	}

	body := append([][]string{}, cells[2:]...)

	return Table(cells[0], body)
}

func splitRow(row string) []string {
	parts := strings.Split(strings.TrimSpace(row), "|")

	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}

	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}

	return cells
}

func isSeparator(cells []string) bool {
	for _, cell := range cells {
		if strings.Trim(cell, "-: ") != "" {
			return false
		}
	}

	return len(cells) > 0
}

// Table renders a markdown table with every column padded to its widest cell, measured
// in terminal display width. Short rows are padded with empty cells.
func Table(headers []string, rows [][]string) []string {
	colCount := len(headers)
	for _, row := range rows {
		colCount = max(colCount, len(row))
	}

	widths := make([]int, colCount)
	for i := range widths {
		widths[i] = minColumnWidth
	}

	measure := func(row []string) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	measure(headers)

	for _, row := range rows {
		measure(row)
	}

	out := make([]string, 0, len(rows)+2)
	out = append(out, renderRow(headers, widths))

	sep := make([]string, colCount)
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}

	out = append(out, renderRow(sep, widths))

	for _, row := range rows {
		out = append(out, renderRow(row, widths))
	}

	return out
}

func renderRow(cells []string, widths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, w := range widths {
		content := ""
		if j < len(cells) {
			content = cells[j]
		}

		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(content, w))
		sb.WriteString(" |")
	}

	return sb.String()
}
