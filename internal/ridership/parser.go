package ridership

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Aggregate ridership columns. Together with the line columns these are the
// only columns coerced to numbers.
const (
	colTapIn  = "tap_in"
	colTapOut = "tap_out"
	colTotal  = "total"
)

var stationColumns = []string{"station", "station_name", "name"}

// columnIndex maps recognised header names to their position in a row.
type columnIndex struct {
	station int
	tapIn   int
	tapOut  int
	total   int
	lines   map[Line]int
}

// ParseBytes parses a ridership CSV held in memory.
func ParseBytes(data []byte) (*Dataset, error) {
	return Parse(bytes.NewReader(data))
}

// Parse reads a ridership CSV: a header row followed by one row per station.
// Rows shorter than the header are padded with empty values.
func Parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("read header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	// Strip BOM from first field if present
	header[0] = strings.TrimPrefix(header[0], "\xef\xbb\xbf")

	// Upstream exports sometimes carry an unnamed index column first.
	skip := 0
	if len(header) > 0 && unquote(header[0]) == "" {
		skip = 1
	}
	header = header[skip:]
	for i := range header {
		header[i] = unquote(header[i])
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Header: header}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if len(row) >= skip {
			row = row[skip:]
		} else {
			row = nil
		}
		ds.Records = append(ds.Records, decodeRow(row, header, idx))
	}
	return ds, nil
}

func indexColumns(header []string) (columnIndex, error) {
	idx := columnIndex{station: -1, tapIn: -1, tapOut: -1, total: -1, lines: make(map[Line]int)}
	for i, name := range header {
		lower := strings.ToLower(name)
		switch {
		case idx.station < 0 && contains(stationColumns, lower):
			idx.station = i
		case lower == colTapIn:
			idx.tapIn = i
		case lower == colTapOut:
			idx.tapOut = i
		case lower == colTotal:
			idx.total = i
		case isLine(strings.ToUpper(name)):
			idx.lines[Line(strings.ToUpper(name))] = i
		}
	}
	if idx.station < 0 {
		return idx, fmt.Errorf("header has no station column (want one of %v)", stationColumns)
	}
	return idx, nil
}

func decodeRow(row, header []string, idx columnIndex) Record {
	rec := Record{
		Fields: make(map[string]string, len(header)),
		Lines:  make(map[Line]int, len(idx.lines)),
	}
	for i, name := range header {
		rec.Fields[name] = field(row, i)
	}
	rec.Station = field(row, idx.station)
	rec.TapIn = parseCount(field(row, idx.tapIn))
	rec.TapOut = parseCount(field(row, idx.tapOut))
	rec.Total = parseCount(field(row, idx.total))
	for _, l := range AllLines() {
		col, ok := idx.lines[l]
		if ok && parseCount(field(row, col)) != 0 {
			rec.Lines[l] = 1
		} else {
			rec.Lines[l] = 0
		}
	}
	return rec
}

// field returns the unquoted value at i, or "" when the row is too short.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return unquote(row[i])
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// parseCount coerces a count column. Anything unparseable or negative is 0.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int64(math.Round(f))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
