package ridership

import (
	"context"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"busyisland/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), discardLogger())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestImporter_EnsureImportsOnce(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	src := &countingSource{data: []byte(sampleCSV)}
	imp := NewImporter(db, NewLoader(src, discardLogger()), discardLogger())

	for i := 0; i < 2; i++ {
		if err := imp.Ensure(ctx, Weekday); err != nil {
			t.Fatalf("Ensure #%d: %v", i+1, err)
		}
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}

	n, err := db.StationCount(ctx, string(Weekday))
	if err != nil {
		t.Fatalf("StationCount: %v", err)
	}
	if n != 4 {
		t.Errorf("StationCount = %d, want 4", n)
	}

	marker, err := db.GetMetadata(ctx, "imported:weekday")
	if err != nil || marker == "" {
		t.Errorf("import marker = %q, %v, want a timestamp", marker, err)
	}
}

func TestImporter_SkipsUnnamedStations(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	imp := NewImporter(db, NewLoader(&countingSource{}, discardLogger()), discardLogger())

	ds := &Dataset{Period: Weekday, Records: []Record{record("Bishan", 10, NSL), record("", 20, NSL)}}
	if err := imp.Import(ctx, ds); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n, _ := db.StationCount(ctx, string(Weekday)); n != 1 {
		t.Errorf("StationCount = %d, want 1", n)
	}
}

func TestImporter_RankingByLine(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	imp := NewImporter(db, NewLoader(&countingSource{}, discardLogger()), discardLogger())

	if err := imp.Import(ctx, &Dataset{Period: Weekend, Records: testRecords()}); err != nil {
		t.Fatalf("Import: %v", err)
	}

	var lrt []string
	for _, l := range LightRail {
		lrt = append(lrt, string(l))
	}

	tests := []struct {
		name   string
		period Period
		lines  []string
		limit  int
		want   []string
	}{
		{"single line", Weekend, []string{"NSL"}, 10, []string{"Jurong East", "Choa Chu Kang", "Bukit Batok"}},
		{"category with limit", Weekend, lrt, 2, []string{"Choa Chu Kang", "Senja"}},
		{"other period", Weekday, []string{"NSL"}, 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := db.TopStations(ctx, string(tt.period), tt.lines, tt.limit)
			if err != nil {
				t.Fatalf("TopStations: %v", err)
			}
			var got []string
			for _, r := range rows {
				got = append(got, r.Station)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopStations(%s, %v) = %q, want %q", tt.period, tt.lines, got, tt.want)
			}
		})
	}

	rows, _ := db.TopStations(ctx, string(Weekend), []string{"EWL"}, 1)
	if len(rows) != 1 {
		t.Fatalf("TopStations(EWL) returned %d rows, want 1", len(rows))
	}
	lines := append([]string(nil), rows[0].Lines...)
	sort.Strings(lines)
	if want := []string{"EWL", "NSL"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("%s lines = %q, want %q", rows[0].Station, lines, want)
	}
}

func TestImporter_ReimportReplaces(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	imp := NewImporter(db, NewLoader(&countingSource{}, discardLogger()), discardLogger())

	if err := imp.Import(ctx, &Dataset{Period: Weekday, Records: testRecords()}); err != nil {
		t.Fatalf("first Import: %v", err)
	}
	if err := imp.Import(ctx, &Dataset{Period: Weekday, Records: testRecords()[:2]}); err != nil {
		t.Fatalf("second Import: %v", err)
	}

	n, err := db.StationCount(ctx, string(Weekday))
	if err != nil {
		t.Fatalf("StationCount: %v", err)
	}
	if n != 2 {
		t.Errorf("StationCount = %d, want 2", n)
	}
}
