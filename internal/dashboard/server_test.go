package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"mhsurvey/internal/config"
	"mhsurvey/internal/loader"
	"mhsurvey/internal/logger"
	"mhsurvey/internal/models"
	"mhsurvey/internal/pipeline"
	"mhsurvey/pkg/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyCSV = "Choose your gender,Age,Your current year of Study,What is your CGPA?," +
	"Do you have Depression?,Do you have Anxiety?,Do you have Panic attack?," +
	"Did you seek any specialist for a treatment?\n" +
	"Female,18,year 1,3.00 - 3.49,Yes,No,Yes,No\n" +
	"Male,21,year 2,3.00 - 3.49,No,Yes,No,No\n" +
	"Male,19,Year 1,3.00 - 3.49,Yes,Yes,Yes,No\n"

type stubRunner struct {
	calls  atomic.Int32
	result *pipeline.Result
	err    error
}

func (s *stubRunner) Run(context.Context) (*pipeline.Result, error) {
	s.calls.Add(1)
	return s.result, s.err
}

func newTestServer(t *testing.T, runner Runner) *httptest.Server {
	t.Helper()

	srv, err := NewServer(config.Default(), runner, logger.Discard())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func realRunner(t *testing.T) Runner {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mental.csv")
	require.NoError(t, os.WriteFile(path, []byte(surveyCSV), 0644))

	cfg := config.Default()
	cfg.Source.Path = path

	return pipeline.NewRunner(cfg, logger.Discard())
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestServer_Endpoints(t *testing.T) {
	ts := newTestServer(t, realRunner(t))

	resp, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<svg")
	assert.NotContains(t, body, "<?xml")
	assert.Contains(t, body, "3 responses")

	resp, body = get(t, ts.URL+"/dashboard.svg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, 3, strings.Count(body, "<polyline"))

	resp, body = get(t, ts.URL+"/api/report")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report models.Report
	require.NoError(t, json.Unmarshal([]byte(body), &report))
	assert.Equal(t, 3, report.Overview.Total)
	assert.Len(t, report.GenderGroups, 2)

	resp, body = get(t, ts.URL+"/report.md")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ok, err := metadata.Verify(body)
	assert.True(t, ok, "markdown must verify: %v", err)

	resp, body = get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}

func TestServer_RunsPipelinePerRequest(t *testing.T) {
	runner := &stubRunner{result: &pipeline.Result{Report: pipeline.Assemble(nil)}}
	ts := newTestServer(t, runner)

	get(t, ts.URL+"/api/report")
	get(t, ts.URL+"/api/report")
	get(t, ts.URL+"/healthz")

	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestServer_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unreadable source", fmt.Errorf("load failed: %w", loader.ErrSourceUnreadable), http.StatusBadGateway},
		{"missing column", fmt.Errorf("load failed: %w", loader.ErrMissingColumn), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &stubRunner{err: tt.err})

			for _, path := range []string{"/", "/dashboard.svg", "/api/report", "/report.md"} {
				resp, body := get(t, ts.URL+path)
				assert.Equal(t, tt.want, resp.StatusCode, path)
				assert.Contains(t, body, tt.err.Error(), path)
			}
		})
	}
}

func TestServer_NotFound(t *testing.T) {
	ts := newTestServer(t, &stubRunner{})

	resp, _ := get(t, ts.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
