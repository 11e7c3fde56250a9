package ridership

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"busyisland/internal/storage"
)

// Importer copies loaded datasets into the SQLite store for browsing.
type Importer struct {
	db     *storage.DB
	loader *Loader
	logger *slog.Logger

	mu sync.Mutex
}

// NewImporter creates an Importer.
func NewImporter(db *storage.DB, loader *Loader, logger *slog.Logger) *Importer {
	return &Importer{db: db, loader: loader, logger: logger}
}

func importedKey(period Period) string {
	return "imported:" + string(period)
}

// Ensure loads and imports the period's dataset unless it is already stored.
func (imp *Importer) Ensure(ctx context.Context, period Period) error {
	imp.mu.Lock()
	defer imp.mu.Unlock()

	done, err := imp.db.GetMetadata(ctx, importedKey(period))
	if err != nil {
		return fmt.Errorf("read import marker: %w", err)
	}
	if done != "" {
		return nil
	}

	ds, err := imp.loader.Load(ctx, period)
	if err != nil {
		return err
	}
	return imp.Import(ctx, ds)
}

// Import replaces the stored stations of the dataset's period.
// The entire operation runs in a single transaction for atomicity.
func (imp *Importer) Import(ctx context.Context, ds *Dataset) error {
	start := time.Now()

	tx, err := imp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"station_lines", "stations"} {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE period = ?", table), string(ds.Period)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := imp.importStations(ctx, tx, ds); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO feed_metadata (key, value) VALUES (?, ?)`,
		importedKey(ds.Period), now); err != nil {
		return fmt.Errorf("set import marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	imp.logger.Info("ridership import complete",
		"period", ds.Period,
		"stations", len(ds.Records),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func (imp *Importer) importStations(ctx context.Context, tx *sql.Tx, ds *Dataset) error {
	stationStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO stations (period, station, tap_in, tap_out, total) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare stations: %w", err)
	}
	defer stationStmt.Close()

	lineStmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO station_lines (period, station, line) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare station_lines: %w", err)
	}
	defer lineStmt.Close()

	for _, r := range ds.Records {
		if r.Station == "" {
			continue
		}
		if _, err := stationStmt.ExecContext(ctx, string(ds.Period), r.Station, r.TapIn, r.TapOut, r.Total); err != nil {
			return fmt.Errorf("insert station %s: %w", r.Station, err)
		}
		for _, l := range AllLines() {
			if !r.Serves(l) {
				continue
			}
			if _, err := lineStmt.ExecContext(ctx, string(ds.Period), r.Station, string(l)); err != nil {
				return fmt.Errorf("insert line %s for %s: %w", l, r.Station, err)
			}
		}
	}
	return nil
}
