package ridership

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"
)

// Source fetches the raw CSV for a period.
type Source interface {
	Fetch(ctx context.Context, period Period) ([]byte, error)
}

// FSSource reads dataset files from a filesystem, such as the embedded
// defaults or os.DirFS on a data directory.
type FSSource struct {
	fsys  fs.FS
	files map[Period]string
}

// NewFSSource creates a source reading <period>.csv from fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{
		fsys: fsys,
		files: map[Period]string{
			Weekday: "weekday.csv",
			Weekend: "weekend.csv",
		},
	}
}

// Fetch reads the period's file.
func (s *FSSource) Fetch(ctx context.Context, period Period) ([]byte, error) {
	name, ok := s.files[period]
	if !ok {
		return nil, fmt.Errorf("no file for period %q", period)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// HTTPSource downloads dataset files over HTTP(S).
type HTTPSource struct {
	client *http.Client
	urls   map[Period]string
	logger *slog.Logger
}

// NewHTTPSource creates an HTTPSource for the given period URLs.
func NewHTTPSource(urls map[Period]string, timeout time.Duration, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		client: &http.Client{Timeout: timeout},
		urls:   urls,
		logger: logger,
	}
}

// Has reports whether a URL is configured for the period.
func (s *HTTPSource) Has(period Period) bool {
	_, ok := s.urls[period]
	return ok
}

// Fetch downloads the period's file.
func (s *HTTPSource) Fetch(ctx context.Context, period Period) ([]byte, error) {
	url, ok := s.urls[period]
	if !ok {
		return nil, fmt.Errorf("no URL for period %q", period)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.logger.Info("downloading ridership data", "period", period, "url", url)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	s.logger.Info("ridership data downloaded", "period", period, "bytes", len(data))
	return data, nil
}

// Fallback tries the HTTP source for periods with a URL and the fallback
// source for the rest.
type Fallback struct {
	HTTP *HTTPSource
	Next Source
}

// Fetch picks the source for the period.
func (f Fallback) Fetch(ctx context.Context, period Period) ([]byte, error) {
	if f.HTTP != nil && f.HTTP.Has(period) {
		return f.HTTP.Fetch(ctx, period)
	}
	return f.Next.Fetch(ctx, period)
}
