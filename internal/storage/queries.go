package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// GetMetadata retrieves a value from the feed_metadata table.
func (db *DB) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM feed_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetMetadata stores a key-value pair in the feed_metadata table.
func (db *DB) SetMetadata(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO feed_metadata (key, value) VALUES (?, ?)`,
		key, value)
	return err
}

// StationRow is a station's ridership for one period.
type StationRow struct {
	Station string
	TapIn   int64
	TapOut  int64
	Total   int64
	Lines   []string
}

// TopStations returns the busiest stations of a period served by any of the
// given lines, busiest first.
func (db *DB) TopStations(ctx context.Context, period string, lines []string, limit int) ([]StationRow, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(lines)), ",")

	args := make([]any, 0, len(lines)+2)
	args = append(args, period)
	for _, l := range lines {
		args = append(args, l)
	}
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, `
		SELECT s.station, s.tap_in, s.tap_out, s.total,
		       (SELECT GROUP_CONCAT(sl.line, ' ')
		          FROM station_lines AS sl
		         WHERE sl.period = s.period AND sl.station = s.station)
		FROM stations AS s
		WHERE s.period = ?
		  AND EXISTS (
		        SELECT 1 FROM station_lines AS l
		         WHERE l.period = s.period AND l.station = s.station
		           AND l.line IN (`+placeholders+`))
		ORDER BY s.total DESC, s.station
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("top stations query: %w", err)
	}
	defer rows.Close()

	var out []StationRow
	for rows.Next() {
		var r StationRow
		var lines sql.NullString
		if err := rows.Scan(&r.Station, &r.TapIn, &r.TapOut, &r.Total, &lines); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		r.Lines = strings.Fields(lines.String)
		out = append(out, r)
	}
	return out, rows.Err()
}

// StationCount returns how many stations are stored for a period.
func (db *DB) StationCount(ctx context.Context, period string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stations WHERE period = ?`, period).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stations: %w", err)
	}
	return n, nil
}
