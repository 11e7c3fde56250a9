package ridership

import (
	"fmt"
	"strings"
)

// Line is a rail line code as it appears in the dataset header.
type Line string

const (
	NSL Line = "NSL"
	EWL Line = "EWL"
	NEL Line = "NEL"
	CCL Line = "CCL"
	DTL Line = "DTL"
	TEL Line = "TEL"

	BPLRT Line = "BPLRT"
	SKLRT Line = "SKLRT"
	PGLRT Line = "PGLRT"
)

// Category groups lines into heavy rail (MRT) and light rail (LRT).
type Category string

const (
	MRT Category = "MRT"
	LRT Category = "LRT"
)

// HeavyRail and LightRail list the lines of each category in display order.
var (
	HeavyRail = []Line{NSL, EWL, NEL, CCL, DTL, TEL}
	LightRail = []Line{BPLRT, SKLRT, PGLRT}
)

// AllLines returns every known line, heavy rail first.
func AllLines() []Line {
	out := make([]Line, 0, len(HeavyRail)+len(LightRail))
	out = append(out, HeavyRail...)
	return append(out, LightRail...)
}

// Category reports which category the line belongs to.
func (l Line) Category() Category {
	for _, h := range HeavyRail {
		if h == l {
			return MRT
		}
	}
	return LRT
}

// Lines returns the lines in the category.
func (c Category) Lines() []Line {
	if c == LRT {
		return LightRail
	}
	return HeavyRail
}

func isLine(s string) bool {
	for _, l := range AllLines() {
		if string(l) == s {
			return true
		}
	}
	return false
}

// Selection is what the player picks to build a pool: a single line or
// every line of a category.
type Selection struct {
	Line     Line
	Category Category // set for wildcard selections, Line is then empty
}

// SelectLine and SelectCategory build selections.
func SelectLine(l Line) Selection         { return Selection{Line: l} }
func SelectCategory(c Category) Selection { return Selection{Category: c} }

// IsWildcard reports whether the selection covers a whole category.
func (s Selection) IsWildcard() bool { return s.Category != "" }

// Lines returns the lines the selection matches.
func (s Selection) Lines() []Line {
	if s.IsWildcard() {
		return s.Category.Lines()
	}
	return []Line{s.Line}
}

func (s Selection) String() string {
	if s.IsWildcard() {
		return string(s.Category)
	}
	return string(s.Line)
}

// Label is the human-readable name used in page headings.
func (s Selection) Label() string {
	switch s.Category {
	case MRT:
		return "All MRT lines"
	case LRT:
		return "All LRT lines"
	}
	return string(s.Line)
}

// ParseSelection accepts a line code or a category name, case-insensitively.
func ParseSelection(s string) (Selection, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch Category(v) {
	case MRT, LRT:
		return SelectCategory(Category(v)), nil
	}
	if isLine(v) {
		return SelectLine(Line(v)), nil
	}
	return Selection{}, fmt.Errorf("unknown line %q", s)
}

// Period is the time period a dataset covers.
type Period string

const (
	Weekday Period = "weekday"
	Weekend Period = "weekend"
)

// Periods lists the supported periods.
var Periods = []Period{Weekday, Weekend}

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Weekday, Weekend:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Record is one station's ridership for one period.
type Record struct {
	Station string
	Lines   map[Line]int // 0 or 1 per known line
	TapIn   int64
	TapOut  int64
	Total   int64

	// Fields holds every column of the row as text, keyed by header name.
	Fields map[string]string
}

// Serves reports whether the station is on the line.
func (r Record) Serves(l Line) bool {
	return r.Lines[l] == 1
}

// FieldCount is the number of columns the record carries.
func (r Record) FieldCount() int {
	return len(r.Fields)
}

// Dataset is the parsed content of one ridership file.
type Dataset struct {
	Period  Period
	Header  []string
	Records []Record
}
