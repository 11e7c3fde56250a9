package game

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Feedback describes the outcome of an answer.
type Feedback struct {
	Chosen      Side
	CorrectSide Side
	Correct     bool
	Final       bool // answer to the last question of the round

	Winner      string
	WinnerTotal int64
	Loser       string
	LoserTotal  int64

	Message string
}

func newFeedback(pair Pair, chosen, winner Side) Feedback {
	fb := Feedback{
		Chosen:      chosen,
		CorrectSide: winner,
		Correct:     chosen == winner,
	}
	w, l := pair.Left, pair.Right
	if winner == Right {
		w, l = pair.Right, pair.Left
	}
	fb.Winner, fb.WinnerTotal = w.Station, w.Total
	fb.Loser, fb.LoserTotal = l.Station, l.Total

	verdict := "Not quite."
	if fb.Correct {
		verdict = "Correct!"
	}
	if w.Total == l.Total {
		fb.Message = fmt.Sprintf("%s %s and %s both see %s riders a day.",
			verdict, w.Station, l.Station, humanize.Comma(w.Total))
		return fb
	}
	fb.Message = fmt.Sprintf("%s %s sees %s riders a day, more than %s with %s.",
		verdict, w.Station, humanize.Comma(w.Total), l.Station, humanize.Comma(l.Total))
	return fb
}
