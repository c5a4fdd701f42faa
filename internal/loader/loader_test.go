package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"mhsurvey/internal/config"
	"mhsurvey/internal/logger"
	"mhsurvey/internal/models"

	"github.com/xuri/excelize/v2"
)

const surveyHeader = "Timestamp,Choose your gender,Age,What is your course?,Your current year of Study," +
	"What is your CGPA?,Marital status,Do you have Depression?,Do you have Anxiety?," +
	"Do you have Panic attack?,Did you seek any specialist for a treatment?\n"

const surveyCSV = surveyHeader +
	"8/7/2020 12:02,Female,18,Engineering,year 1,3.00 - 3.49,No,Yes,No,Yes,No\n" +
	"8/7/2020 12:04,Male,21,Islamic education,year 2,3.00 - 3.49,No,No,Yes,No,No\n" +
	"8/7/2020 12:05,Male,19,BIT,Year 1,3.00 - 3.49,No,Yes,Yes,Yes,No\n"

func testPolicy() *config.RetryPolicy {
	return &config.RetryPolicy{
		MaxAttempts:       3,
		InitialDelayMs:    1,
		MaxDelayMs:        5,
		BackoffMultiplier: 1.0,
		TimeoutSec:        5,
	}
}

func newTestLoader() *Loader {
	log := logger.Discard()
	return NewLoader(NewFetcher(testPolicy(), log), log)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	return path
}

func TestParse_CSV(t *testing.T) {
	table, err := Parse([]byte(surveyCSV), "csv", "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(table.Headers) != 11 {
		t.Errorf("Expected 11 headers, got %d", len(table.Headers))
	}

	if len(table.Records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(table.Records))
	}

	if got := table.Records[1].Get(models.ColumnGender); got != "Male" {
		t.Errorf("Expected gender 'Male', got '%s'", got)
	}

	if got := table.Records[0].Get(models.ColumnCGPA); got != "3.00 - 3.49" {
		t.Errorf("Expected CGPA passed through, got '%s'", got)
	}

	if err := table.CheckColumns(models.RequiredColumns); err != nil {
		t.Errorf("Expected all required columns, got %v", err)
	}
}

func TestParse_CSVHeaderCleanupAndRaggedRows(t *testing.T) {
	data := "\ufeff Age ,Choose your gender\n19\n 20 ,Female\n"

	table, err := Parse([]byte(data), "csv", "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !table.HasColumn("Age") {
		t.Fatalf("Expected BOM and spaces stripped from header, got %q", table.Headers)
	}

	if got := table.Records[0].Get(models.ColumnGender); got != "" {
		t.Errorf("Expected short row padded with empty cell, got '%s'", got)
	}

	if !table.Records[0].Has(models.ColumnGender) {
		t.Error("Expected padded cell to be present in record")
	}

	if got := table.Records[1].Get("Age"); got != " 20 " {
		t.Errorf("Expected data cell untouched, got %q", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"empty", "", "csv"},
		{"bad quotes", "a,b\n\"unterminated,1\n", "csv"},
		{"unknown format", "a,b\n", "parquet"},
		{"not a workbook", "a,b\n1,2\n", "xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format, "")
			if !errors.Is(err, ErrSourceUnreadable) {
				t.Errorf("Expected ErrSourceUnreadable, got %v", err)
			}
		})
	}
}

func TestTable_CheckColumns(t *testing.T) {
	table, err := Parse([]byte("Age,Choose your gender\n19,Male\n"), "csv", "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	err = table.CheckColumns(models.RequiredColumns)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Expected ErrMissingColumn, got %v", err)
	}

	if errors.Is(err, ErrSourceUnreadable) {
		t.Error("Missing column must be distinct from unreadable source")
	}

	if !strings.Contains(err.Error(), models.ColumnDepression) {
		t.Errorf("Expected error to name missing columns, got %v", err)
	}
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{}
	for _, col := range models.RequiredColumns {
		header = append(header, col)
	}

	row := []interface{}{"Female", "3.50 - 4.00", "20", "Year 3", "Yes", "No", "No", "No"}

	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow failed: %v", err)
	}

	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatalf("SetSheetRow failed: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}

	table, err := Parse(buf.Bytes(), "xlsx", "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(table.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(table.Records))
	}

	if got := table.Records[0].Get(models.ColumnYearOfStudy); got != "Year 3" {
		t.Errorf("Expected year 'Year 3', got '%s'", got)
	}

	if _, err := Parse(buf.Bytes(), "xlsx", "Missing"); !errors.Is(err, ErrSourceUnreadable) {
		t.Errorf("Expected ErrSourceUnreadable for unknown sheet, got %v", err)
	}
}

func TestLoader_LoadLocalFile(t *testing.T) {
	path := writeFile(t, "mental.csv", []byte(surveyCSV))

	table, err := newTestLoader().Load(context.Background(), config.SourceConfig{Path: path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(table.Records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(table.Records))
	}
}

func TestLoader_LoadMissingFile(t *testing.T) {
	_, err := newTestLoader().Load(context.Background(), config.SourceConfig{Path: "/nonexistent/mental.csv"})
	if !errors.Is(err, ErrSourceUnreadable) {
		t.Fatalf("Expected ErrSourceUnreadable, got %v", err)
	}
}

func TestLoader_LoadMissingColumn(t *testing.T) {
	path := writeFile(t, "partial.csv", []byte("Age,Choose your gender\n19,Male\n"))

	_, err := newTestLoader().Load(context.Background(), config.SourceConfig{Path: path})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Expected ErrMissingColumn, got %v", err)
	}
}

func TestFetcher_RetriesRetryableStatus(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		_, _ = w.Write([]byte(surveyCSV))
	}))
	defer srv.Close()

	table, err := newTestLoader().Load(context.Background(), config.SourceConfig{URL: srv.URL + "/mental.csv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}

	if len(table.Records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(table.Records))
	}
}

func TestFetcher_FallsBackToBackupURL(t *testing.T) {
	var primaryCalls atomic.Int32

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer primary.Close()

	backup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(surveyCSV))
	}))
	defer backup.Close()

	fetcher := NewFetcher(testPolicy(), logger.Discard())

	fetched, err := fetcher.Fetch(context.Background(), config.SourceConfig{
		URL:        primary.URL,
		BackupURLs: []string{backup.URL},
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if primaryCalls.Load() != 1 {
		t.Errorf("Expected 404 not to be retried, got %d calls", primaryCalls.Load())
	}

	if fetched.Origin != backup.URL {
		t.Errorf("Expected origin %s, got %s", backup.URL, fetched.Origin)
	}
}

func TestFetcher_AllURLsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	fetcher := NewFetcher(testPolicy(), logger.Discard())

	_, err := fetcher.Fetch(context.Background(), config.SourceConfig{URL: srv.URL})
	if !errors.Is(err, ErrSourceUnreadable) {
		t.Fatalf("Expected ErrSourceUnreadable, got %v", err)
	}

	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Errorf("Expected wrapped status error, got %v", err)
	}
}

func TestFetcher_NoSource(t *testing.T) {
	fetcher := NewFetcher(testPolicy(), logger.Discard())

	_, err := fetcher.Fetch(context.Background(), config.SourceConfig{})
	if !errors.Is(err, ErrSourceUnreadable) {
		t.Fatalf("Expected ErrSourceUnreadable, got %v", err)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusServiceUnavailable, true},
		{http.StatusGatewayTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusRequestTimeout, true},
		{http.StatusNotFound, false},
		{http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		if got := isRetryableStatus(tt.code); got != tt.want {
			t.Errorf("isRetryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestFetcher_RejectsOversizedBody(t *testing.T) {
	var calls atomic.Int32

	body := surveyHeader + strings.Repeat("8/7/2020 12:02,Female,18,Engineering,year 1,3.00 - 3.49,No,Yes,No,Yes,No\n", 60)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	policy := testPolicy()
	policy.BufferSizeKb = 1

	log := logger.Discard()
	l := NewLoader(NewFetcher(policy, log), log)

	table, err := l.Load(context.Background(), config.SourceConfig{URL: srv.URL + "/mental.csv"})
	if !errors.Is(err, ErrSourceUnreadable) {
		t.Fatalf("Expected ErrSourceUnreadable, got %v", err)
	}

	if !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("Expected ErrResponseTooLarge, got %v", err)
	}

	if table != nil {
		t.Errorf("Expected no partial table, got %d rows", len(table.Records))
	}

	if calls.Load() != 1 {
		t.Errorf("Expected oversized body not to be retried, got %d calls", calls.Load())
	}
}

func TestFetcher_BodyAtLimit(t *testing.T) {
	body := surveyCSV + strings.Repeat("x", 1024-len(surveyCSV))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	policy := testPolicy()
	policy.BufferSizeKb = 1

	fetched, err := NewFetcher(policy, logger.Discard()).Fetch(context.Background(), config.SourceConfig{URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(fetched.Data) != 1024 {
		t.Errorf("Expected 1024 bytes, got %d", len(fetched.Data))
	}
}
