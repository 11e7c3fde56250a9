package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"busyisland/internal/ridership"
)

// State is where a session sits in the round lifecycle.
type State int

const (
	Idle State = iota
	InProgress
	Complete
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Complete:
		return "complete"
	default:
		return "idle"
	}
}

// Side is one of the two stations in a question.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// ParseSide reads "left" or "right".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Left, fmt.Errorf("unknown side %q", s)
}

// DatasetLoader supplies the dataset for a period, loading it on first use.
type DatasetLoader interface {
	Load(ctx context.Context, period ridership.Period) (*ridership.Dataset, error)
}

// Session is one player's game. It is not safe for concurrent use.
type Session struct {
	loader DatasetLoader
	gen    *Generator

	state     State
	selection ridership.Selection
	period    ridership.Period
	poolSize  int
	pairs     []Pair
	index     int
	correct   int
	wrong     int
	answered  bool
	feedback  *Feedback
}

// NewSession creates an idle session.
func NewSession(loader DatasetLoader, gen *Generator) *Session {
	if gen == nil {
		gen = NewGenerator(nil)
	}
	return &Session{loader: loader, gen: gen}
}

// Start begins a new round for the selection and period. A failed load
// leaves the session as it was; too small a pool resets it.
func (s *Session) Start(ctx context.Context, sel ridership.Selection, period ridership.Period) error {
	ds, err := s.loader.Load(ctx, period)
	if err != nil {
		if !errors.Is(err, ridership.ErrDataLoad) {
			err = fmt.Errorf("%w: %w", ridership.ErrDataLoad, err)
		}
		return err
	}

	pool := ridership.Filter(ridership.Named(ds.Records), sel)
	if len(pool) < 2 {
		s.Reset()
		return fmt.Errorf("%w: %s has %d station(s) in the %s data", ErrInsufficientPool, sel.Label(), len(pool), period)
	}

	pairs, err := s.gen.Generate(pool)
	if err != nil {
		s.Reset()
		return err
	}

	s.Reset()
	s.selection = sel
	s.period = period
	s.poolSize = len(pool)
	s.pairs = pairs
	s.state = InProgress
	s.enter(0)
	return nil
}

// enter moves to question i and clears the previous question's result.
func (s *Session) enter(i int) {
	s.index = i
	s.answered = false
	s.feedback = nil
}

// Answer scores the player's pick for the current question. The station
// with the higher total wins; a tie goes to the left station.
func (s *Session) Answer(side Side) (Feedback, error) {
	if s.state != InProgress {
		return Feedback{}, ErrInvalidTransition
	}
	if s.answered {
		return *s.feedback, ErrInvalidTransition
	}

	pair := s.pairs[s.index]
	winner := Left
	if pair.Right.Total > pair.Left.Total {
		winner = Right
	}

	fb := newFeedback(pair, side, winner)
	if fb.Correct {
		s.correct++
	} else {
		s.wrong++
	}
	s.answered = true

	if s.index == QuestionCount-1 {
		fb.Final = true
		fb.Message += fmt.Sprintf(" Final score: %d/%d.", s.correct, QuestionCount)
	}
	s.feedback = &fb
	return fb, nil
}

// Next advances past an answered question. After the last question the
// round completes and the session resets; done reports that case.
func (s *Session) Next() (done bool, err error) {
	if s.state != InProgress || !s.answered {
		return false, ErrInvalidTransition
	}
	if s.index < QuestionCount-1 {
		s.enter(s.index + 1)
		return false, nil
	}
	s.state = Complete
	s.Reset()
	return true, nil
}

// Reset drops the current round and returns to Idle.
func (s *Session) Reset() {
	s.state = Idle
	s.selection = ridership.Selection{}
	s.period = ""
	s.poolSize = 0
	s.pairs = nil
	s.index = 0
	s.correct = 0
	s.wrong = 0
	s.answered = false
	s.feedback = nil
}

// View is a read-only snapshot of the session for rendering.
type View struct {
	State     State
	Selection ridership.Selection
	Period    ridership.Period
	PoolSize  int
	Index     int
	Count     int
	Pair      *Pair
	Correct   int
	Wrong     int
	Answered  bool
	Feedback  *Feedback
}

// Number is the 1-based question number.
func (v View) Number() int { return v.Index + 1 }

// View returns the current question and score.
func (s *Session) View() View {
	v := View{
		State:     s.state,
		Selection: s.selection,
		Period:    s.period,
		PoolSize:  s.poolSize,
		Index:     s.index,
		Count:     QuestionCount,
		Correct:   s.correct,
		Wrong:     s.wrong,
		Answered:  s.answered,
	}
	if s.state == InProgress {
		p := s.pairs[s.index]
		v.Pair = &p
	}
	if s.feedback != nil {
		fb := *s.feedback
		v.Feedback = &fb
	}
	return v
}
