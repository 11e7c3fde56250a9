package game

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busyisland/internal/ridership"
)

type stubLoader struct {
	ds    *ridership.Dataset
	err   error
	calls int
}

func (l *stubLoader) Load(ctx context.Context, period ridership.Period) (*ridership.Dataset, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.ds, nil
}

func loaderWith(records []ridership.Record) *stubLoader {
	return &stubLoader{ds: &ridership.Dataset{Period: ridership.Weekday, Records: records}}
}

var ewl = ridership.SelectLine(ridership.EWL)

// inProgress returns a session sitting on question 0 of a fixed round.
func inProgress(pairs ...Pair) *Session {
	s := NewSession(loaderWith(nil), seeded(0))
	s.pairs = make([]Pair, QuestionCount)
	copy(s.pairs, pairs)
	for i := len(pairs); i < QuestionCount; i++ {
		s.pairs[i] = Pair{Left: station("A", 2), Right: station("B", 1)}
	}
	s.state = InProgress
	s.enter(0)
	return s
}

// correctSide is the side the session should accept for the current pair.
func correctSide(v View) Side {
	if v.Pair.Right.Total > v.Pair.Left.Total {
		return Right
	}
	return Left
}

func TestStart_BeginsRound(t *testing.T) {
	s := NewSession(loaderWith(makePool(25)), seeded(1))
	require.NoError(t, s.Start(context.Background(), ewl, ridership.Weekday))

	v := s.View()
	assert.Equal(t, InProgress, v.State)
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 1, v.Number())
	assert.Equal(t, QuestionCount, v.Count)
	assert.Equal(t, 25, v.PoolSize)
	assert.Equal(t, ewl, v.Selection)
	assert.Equal(t, ridership.Weekday, v.Period)
	assert.False(t, v.Answered)
	assert.Nil(t, v.Feedback)
	require.NotNil(t, v.Pair)
	assert.Len(t, s.pairs, QuestionCount)
}

func TestStart_FiltersBySelection(t *testing.T) {
	records := makePool(4)
	for i := range records {
		records[i].Lines = map[ridership.Line]int{ridership.NSL: 1}
	}
	s := NewSession(loaderWith(records), seeded(1))

	err := s.Start(context.Background(), ewl, ridership.Weekday)
	assert.ErrorIs(t, err, ErrInsufficientPool)
	assert.Equal(t, Idle, s.View().State)

	require.NoError(t, s.Start(context.Background(), ridership.SelectCategory(ridership.MRT), ridership.Weekday))
	assert.Equal(t, 4, s.View().PoolSize)
}

func TestStart_SkipsUnnamedStations(t *testing.T) {
	records := []ridership.Record{station("", 900), station("Bugis", 500), station("", 700)}
	s := NewSession(loaderWith(records), seeded(1))

	err := s.Start(context.Background(), ewl, ridership.Weekday)
	assert.ErrorIs(t, err, ErrInsufficientPool, "one named station is not enough")

	records = append(records, station("Lavender", 300))
	s = NewSession(loaderWith(records), seeded(1))
	require.NoError(t, s.Start(context.Background(), ewl, ridership.Weekday))
	assert.Equal(t, 2, s.View().PoolSize)
	for _, p := range s.pairs {
		assert.NotEmpty(t, p.Left.Station)
		assert.NotEmpty(t, p.Right.Station)
	}
}

func TestStart_InsufficientPoolResets(t *testing.T) {
	s := inProgress()
	s.correct = 3
	s.loader = loaderWith(makePool(1))

	err := s.Start(context.Background(), ewl, ridership.Weekday)
	require.ErrorIs(t, err, ErrInsufficientPool)

	v := s.View()
	assert.Equal(t, Idle, v.State)
	assert.Equal(t, 0, v.Correct)
	assert.Nil(t, v.Pair)
}

func TestStart_LoadFailureKeepsState(t *testing.T) {
	s := inProgress()
	_, err := s.Answer(Left)
	require.NoError(t, err)
	before := s.View()

	s.loader = &stubLoader{err: errors.New("dial tcp: connection refused")}
	err = s.Start(context.Background(), ewl, ridership.Weekend)
	require.Error(t, err)
	assert.ErrorIs(t, err, ridership.ErrDataLoad)

	assert.Equal(t, before, s.View())
}

func TestStart_RestartDiscardsRound(t *testing.T) {
	s := NewSession(loaderWith(makePool(25)), seeded(1))
	require.NoError(t, s.Start(context.Background(), ewl, ridership.Weekday))
	_, err := s.Answer(Left)
	require.NoError(t, err)
	_, err = s.Next()
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background(), ewl, ridership.Weekend))
	v := s.View()
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 0, v.Correct+v.Wrong)
	assert.Equal(t, ridership.Weekend, v.Period)
}

func TestAnswer_Scoring(t *testing.T) {
	pair := Pair{Left: station("Tampines", 500), Right: station("Simei", 300)}

	t.Run("higher side is correct", func(t *testing.T) {
		s := inProgress(pair)
		fb, err := s.Answer(Left)
		require.NoError(t, err)
		assert.True(t, fb.Correct)
		assert.Equal(t, Left, fb.CorrectSide)
		assert.Equal(t, 1, s.View().Correct)
		assert.Equal(t, 0, s.View().Wrong)
	})

	t.Run("lower side is wrong", func(t *testing.T) {
		s := inProgress(pair)
		fb, err := s.Answer(Right)
		require.NoError(t, err)
		assert.False(t, fb.Correct)
		assert.Equal(t, Left, fb.CorrectSide)
		assert.Equal(t, Right, fb.Chosen)
		assert.Equal(t, 0, s.View().Correct)
		assert.Equal(t, 1, s.View().Wrong)
	})

	t.Run("right can win", func(t *testing.T) {
		s := inProgress(Pair{Left: pair.Right, Right: pair.Left})
		fb, err := s.Answer(Right)
		require.NoError(t, err)
		assert.True(t, fb.Correct)
		assert.Equal(t, Right, fb.CorrectSide)
	})
}

func TestAnswer_TieGoesLeft(t *testing.T) {
	pair := Pair{Left: station("Kranji", 800), Right: station("Marsiling", 800)}

	s := inProgress(pair)
	fb, err := s.Answer(Left)
	require.NoError(t, err)
	assert.Equal(t, Left, fb.CorrectSide)
	assert.True(t, fb.Correct)

	s = inProgress(pair)
	fb, err = s.Answer(Right)
	require.NoError(t, err)
	assert.False(t, fb.Correct)
	assert.Contains(t, fb.Message, "both see 800 riders")
}

func TestAnswer_Idempotent(t *testing.T) {
	s := inProgress(Pair{Left: station("A", 500), Right: station("B", 300)})

	first, err := s.Answer(Left)
	require.NoError(t, err)

	second, err := s.Answer(Right)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, first, second, "the recorded answer stands")

	v := s.View()
	assert.Equal(t, 1, v.Correct)
	assert.Equal(t, 0, v.Wrong)
	assert.True(t, v.Answered)
}

func TestAnswer_RequiresRound(t *testing.T) {
	s := NewSession(loaderWith(nil), nil)
	_, err := s.Answer(Left)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, s.View().Correct+s.View().Wrong)
}

func TestAnswer_Feedback(t *testing.T) {
	s := inProgress(Pair{Left: station("Bishan", 45000), Right: station("Braddell", 12000)})

	fb, err := s.Answer(Right)
	require.NoError(t, err)
	assert.Equal(t, "Bishan", fb.Winner)
	assert.Equal(t, int64(45000), fb.WinnerTotal)
	assert.Equal(t, "Braddell", fb.Loser)
	assert.Equal(t, int64(12000), fb.LoserTotal)
	assert.Equal(t, "Not quite. Bishan sees 45,000 riders a day, more than Braddell with 12,000.", fb.Message)
	assert.False(t, fb.Final)

	v := s.View()
	require.NotNil(t, v.Feedback)
	assert.Equal(t, fb, *v.Feedback)
}

func TestNext_RequiresAnswer(t *testing.T) {
	s := inProgress()
	done, err := s.Next()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.False(t, done)
	assert.Equal(t, 0, s.View().Index)

	idle := NewSession(loaderWith(nil), nil)
	_, err = idle.Next()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNext_ClearsQuestionState(t *testing.T) {
	s := inProgress()
	_, err := s.Answer(Left)
	require.NoError(t, err)

	done, err := s.Next()
	require.NoError(t, err)
	assert.False(t, done)

	v := s.View()
	assert.Equal(t, 1, v.Index)
	assert.False(t, v.Answered)
	assert.Nil(t, v.Feedback)
	assert.Equal(t, 1, v.Correct, "score carries over")
}

func TestReset(t *testing.T) {
	s := inProgress()
	_, err := s.Answer(Right)
	require.NoError(t, err)

	s.Reset()
	v := s.View()
	assert.Equal(t, Idle, v.State)
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 0, v.Correct)
	assert.Equal(t, 0, v.Wrong)
	assert.False(t, v.Answered)
	assert.Nil(t, v.Pair)
	assert.Nil(t, v.Feedback)

	s.Reset()
	assert.Equal(t, Idle, s.View().State, "reset from idle is fine")
}

func TestFullRound(t *testing.T) {
	s := NewSession(loaderWith(makePool(25)), seeded(7))
	require.NoError(t, s.Start(context.Background(), ewl, ridership.Weekday))

	seen := make(map[string]bool)
	for i := 0; i < QuestionCount; i++ {
		v := s.View()
		require.Equal(t, InProgress, v.State)
		require.Equal(t, i, v.Index)
		assert.NotEqual(t, v.Pair.Left.Station, v.Pair.Right.Station)
		seen[v.Pair.Left.Station] = true
		seen[v.Pair.Right.Station] = true

		fb, err := s.Answer(correctSide(v))
		require.NoError(t, err)
		require.True(t, fb.Correct)

		if i == QuestionCount-1 {
			assert.True(t, fb.Final)
			assert.Contains(t, fb.Message, "Final score: 10/10.")
			assert.Equal(t, 10, s.View().Correct)
			assert.Equal(t, 0, s.View().Wrong)
		}

		done, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, i == QuestionCount-1, done)
	}
	assert.Len(t, seen, 2*QuestionCount)

	v := s.View()
	assert.Equal(t, Idle, v.State)
	assert.Equal(t, 0, v.Correct)
	assert.Equal(t, 0, v.Index)

	s.Reset()
	assert.Equal(t, 0, s.View().Correct)
	assert.Equal(t, 0, s.View().Index)
}

func TestParseSide(t *testing.T) {
	side, err := ParseSide("RIGHT")
	require.NoError(t, err)
	assert.Equal(t, Right, side)

	side, err = ParseSide("left")
	require.NoError(t, err)
	assert.Equal(t, Left, side)

	_, err = ParseSide("middle")
	assert.Error(t, err)
}
