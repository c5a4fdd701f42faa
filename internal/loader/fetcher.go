package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"mhsurvey/internal/config"
	"mhsurvey/internal/logger"
)

// Fetch errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrResponseTooLarge     = errors.New("response too large")
)

// Fetched is the raw content of a source together with where it came from.
type Fetched struct {
	Data     []byte
	Origin   string
	Duration time.Duration
}

// Fetcher reads sources from disk or over HTTP with config-driven retry logic.
type Fetcher struct {
	client       *http.Client
	retryPolicy  *config.RetryPolicy
	log          *logger.Logger
	bufferSizeKb int
}

// NewFetcher creates a fetcher using retryPolicy for remote sources.
func NewFetcher(retryPolicy *config.RetryPolicy, log *logger.Logger) *Fetcher {
	bufferSizeKb := retryPolicy.BufferSizeKb
	if bufferSizeKb <= 0 {
		bufferSizeKb = 10240
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: retryPolicy.GetTimeout(),
		},
		retryPolicy:  retryPolicy,
		log:          log,
		bufferSizeKb: bufferSizeKb,
	}
}

// Fetch returns the content of src. Local paths win over URLs; remote sources fall back
// through their backup URLs in order. Every failure wraps ErrSourceUnreadable.
func (f *Fetcher) Fetch(ctx context.Context, src config.SourceConfig) (*Fetched, error) {
	if src.IsLocalFile() {
		start := time.Now()

		data, err := f.ReadLocalFile(src.Path)
		if err != nil {
			return nil, err
		}

		return &Fetched{Data: data, Origin: src.Path, Duration: time.Since(start)}, nil
	}

	urls := src.GetAllURLs()
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no path or URL configured", ErrSourceUnreadable)
	}

	var lastErr error

	for i, url := range urls {
		data, statusCode, duration, err := f.FetchURL(ctx, url)
		if err == nil {
			f.log.Debug("source fetched", "url", url, "status", statusCode, "bytes", len(data), "duration", duration)
			return &Fetched{Data: data, Origin: url, Duration: duration}, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			break
		}

		if i < len(urls)-1 {
			f.log.Warn("source failed, trying backup", "url", url, "error", err)
		}
	}

	return nil, fmt.Errorf("%w: all %d URLs failed: %w", ErrSourceUnreadable, len(urls), lastErr)
}

// ReadLocalFile reads content from a local file path.
func (f *Fetcher) ReadLocalFile(filePath string) ([]byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read local file %s: %w", ErrSourceUnreadable, filePath, err)
	}

	return content, nil
}

// FetchURL returns (content, statusCode, duration, error) after up to MaxAttempts tries.
func (f *Fetcher) FetchURL(ctx context.Context, url string) ([]byte, int, time.Duration, error) {
	var lastErr error

	var lastStatusCode int

	totalDuration := time.Duration(0)

	for attempt := 1; attempt <= f.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, f.retryPolicy.GetRetryDelay(attempt)); err != nil {
				return nil, lastStatusCode, totalDuration, err
			}
		}

		startTime := time.Now()
		body, statusCode, err := f.get(ctx, url)
		totalDuration += time.Since(startTime)
		lastStatusCode = statusCode

		if err == nil {
			return body, statusCode, totalDuration, nil
		}

		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, f.retryPolicy.MaxAttempts, err)

		if ctx.Err() != nil {
			return nil, lastStatusCode, totalDuration, ctx.Err()
		}

		// Only retry on transport errors and specific status codes
		if statusCode != 0 && !isRetryableStatus(statusCode) {
			break
		}

		f.log.Debug("fetch attempt failed", "url", url, "attempt", attempt, "error", err)
	}

	return nil, lastStatusCode, totalDuration, lastErr
}

// get performs one request. A body larger than bufferSizeKb is an error, never truncated.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "mhsurvey/1.0")
	req.Header.Set("Accept", "text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	limit := int64(f.bufferSizeKb) * 1024

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(body)) > limit {
		return nil, resp.StatusCode, fmt.Errorf("%w: %w: exceeds %d KB", ErrSourceUnreadable, ErrResponseTooLarge, f.bufferSizeKb)
	}

	return body, resp.StatusCode, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}

	return false
}
