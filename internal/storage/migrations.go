package storage

import "fmt"

// migrate creates the schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Info("database migrations applied")
	return nil
}

var migrations = []string{
	// Stations, one row per station per period
	`CREATE TABLE IF NOT EXISTS stations (
		period  TEXT NOT NULL,
		station TEXT NOT NULL,
		tap_in  INTEGER NOT NULL DEFAULT 0,
		tap_out INTEGER NOT NULL DEFAULT 0,
		total   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (period, station)
	)`,

	// Lines serving each station
	`CREATE TABLE IF NOT EXISTS station_lines (
		period  TEXT NOT NULL,
		station TEXT NOT NULL,
		line    TEXT NOT NULL,
		PRIMARY KEY (period, station, line),
		FOREIGN KEY (period, station) REFERENCES stations(period, station) ON DELETE CASCADE
	)`,

	// Import bookkeeping (imported:<period>, etc.)
	`CREATE TABLE IF NOT EXISTS feed_metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_stations_total ON stations(period, total DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_station_lines_line ON station_lines(period, line)`,
}
