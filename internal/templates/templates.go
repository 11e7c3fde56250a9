// Package templates holds the templ components for every page. Edit the
// .templ files and run `templ generate`; the _templ.go files are generated.
package templates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"busyisland/internal/game"
	"busyisland/internal/ridership"
	"busyisland/internal/storage"
)

// Page holds the fields every view shares.
type Page struct {
	Title        string
	CurrentPath  string
	AssetVersion string
	Flash        string // one-off message shown above the content
	Refresh      int    // seconds before the browser reloads; 0 disables
}

// GameData is the state of the game page.
type GameData struct {
	Page
	View      game.View
	Selection string // last selection picked in the filter form
	Period    string
}

// BrowseData is the station ranking view.
type BrowseData struct {
	Page
	Selection string
	Label     string
	Period    string
	Rows      []storage.StationRow
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

// selectionOptions lists both categories followed by every line.
func selectionOptions(selected string) []option {
	sels := []ridership.Selection{
		ridership.SelectCategory(ridership.MRT),
		ridership.SelectCategory(ridership.LRT),
	}
	for _, l := range ridership.AllLines() {
		sels = append(sels, ridership.SelectLine(l))
	}
	opts := make([]option, len(sels))
	for i, s := range sels {
		opts[i] = option{Value: s.String(), Label: s.Label(), Selected: s.String() == selected}
	}
	return opts
}

func periodOptions(selected string) []option {
	opts := make([]option, len(ridership.Periods))
	for i, p := range ridership.Periods {
		label := "Weekday"
		if p == ridership.Weekend {
			label = "Weekend"
		}
		opts[i] = option{Value: string(p), Label: label, Selected: string(p) == selected}
	}
	return opts
}

func stylesheetURL(p Page) string {
	return "/static/style.css?v=" + p.AssetVersion
}

// recordLines lists the lines a record serves in display order.
func recordLines(r ridership.Record) string {
	var out []string
	for _, l := range ridership.AllLines() {
		if r.Serves(l) {
			out = append(out, string(l))
		}
	}
	return strings.Join(out, " · ")
}

func scoreLine(v game.View) string {
	return fmt.Sprintf("Question %d of %d · %s, %s · Correct %d · Wrong %d",
		v.Number(), v.Count, v.Selection.Label(), v.Period, v.Correct, v.Wrong)
}

func stationClass(v game.View, side game.Side) string {
	if v.Feedback == nil {
		return "station"
	}
	if v.Feedback.CorrectSide == side {
		return "station winner"
	}
	return "station loser"
}

func feedbackClass(fb *game.Feedback) string {
	if fb.Correct {
		return "feedback correct"
	}
	return "feedback wrong"
}

func nextLabel(fb *game.Feedback) string {
	if fb.Final {
		return "Play again"
	}
	return "Next question"
}

func riders(n int64) string {
	return humanize.Comma(n) + " riders"
}

func rank(i int) string {
	return strconv.Itoa(i + 1)
}
