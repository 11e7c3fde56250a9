package ridership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrDataLoad wraps every failure to fetch or parse a dataset.
var ErrDataLoad = errors.New("could not load ridership data")

// Loader loads datasets on first use and keeps them for the process
// lifetime. Concurrent loads of one period share a single fetch.
type Loader struct {
	src    Source
	logger *slog.Logger
	group  singleflight.Group

	mu    sync.RWMutex
	cache map[Period]*Dataset
}

// NewLoader creates a Loader reading from src.
func NewLoader(src Source, logger *slog.Logger) *Loader {
	return &Loader{
		src:    src,
		logger: logger,
		cache:  make(map[Period]*Dataset),
	}
}

// Load returns the dataset for the period. Failures are not cached.
//
// The shared fetch runs detached from any one caller, so a cancelled
// request only abandons its own wait.
func (l *Loader) Load(ctx context.Context, period Period) (*Dataset, error) {
	if ds, ok := l.cached(period); ok {
		return ds, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(string(period), func() (any, error) {
		if ds, ok := l.cached(period); ok {
			return ds, nil
		}
		return l.fetch(fetchCtx, period)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: wait for %s: %w", ErrDataLoad, period, ctx.Err())
	}
}

// Loaded reports whether the period is already cached.
func (l *Loader) Loaded(period Period) bool {
	_, ok := l.cached(period)
	return ok
}

func (l *Loader) cached(period Period) (*Dataset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ds, ok := l.cache[period]
	return ds, ok
}

func (l *Loader) fetch(ctx context.Context, period Period) (*Dataset, error) {
	start := time.Now()

	data, err := l.src.Fetch(ctx, period)
	if err != nil {
		l.logger.Error("fetch ridership data", "period", period, "error", err)
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrDataLoad, period, err)
	}

	ds, err := ParseBytes(data)
	if err != nil {
		l.logger.Error("parse ridership data", "period", period, "error", err)
		return nil, fmt.Errorf("%w: parse %s: %w", ErrDataLoad, period, err)
	}
	ds.Period = period

	l.mu.Lock()
	l.cache[period] = ds
	l.mu.Unlock()

	l.logger.Info("ridership data loaded",
		"period", period,
		"stations", len(ds.Records),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return ds, nil
}
