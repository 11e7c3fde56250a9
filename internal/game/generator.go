package game

import (
	"fmt"
	"math/rand/v2"

	"busyisland/internal/ridership"
)

// QuestionCount is the number of questions in a round.
const QuestionCount = 10

// maxScanSteps bounds how many rejected candidates the small-pool scan will
// skip before accepting whatever pair is under the cursor.
const maxScanSteps = 1000

// Pair is one higher/lower question.
type Pair struct {
	Left  ridership.Record
	Right ridership.Record
}

// Generator builds question rounds from a pool. It is not safe for
// concurrent use; give each session its own.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator. A nil rng gets a randomly seeded PCG.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// Generate returns QuestionCount pairs drawn from pool.
//
// With at least 2*QuestionCount records every station appears at most once.
// Smaller pools reuse stations across questions but never pair a station
// with itself, unless the pool offers no alternative.
func (g *Generator) Generate(pool []ridership.Record) ([]Pair, error) {
	if len(pool) < 2 {
		return nil, fmt.Errorf("%w: need 2 stations, have %d", ErrInsufficientPool, len(pool))
	}

	shuffled := g.shuffled(pool)
	if len(shuffled) >= 2*QuestionCount {
		pairs := make([]Pair, QuestionCount)
		for i := range pairs {
			pairs[i] = Pair{Left: shuffled[2*i], Right: shuffled[2*i+1]}
		}
		return pairs, nil
	}
	return g.scan(pool, shuffled), nil
}

// scan walks a buffer of concatenated shuffles, taking adjacent records as
// candidates and moving the cursor by one after every candidate.
func (g *Generator) scan(pool, buf []ridership.Record) []Pair {
	for len(buf) < 2*QuestionCount {
		buf = append(buf, g.shuffled(pool)...)
	}

	pairs := make([]Pair, 0, QuestionCount)
	cursor, rejected := 0, 0
	for len(pairs) < QuestionCount {
		if cursor+1 >= len(buf) {
			buf = append(buf[cursor:], g.shuffled(pool)...)
			cursor = 0
		}
		left, right := buf[cursor], buf[cursor+1]
		cursor++

		if left.Station != right.Station || rejected >= maxScanSteps {
			pairs = append(pairs, Pair{Left: left, Right: right})
			rejected = 0
			continue
		}
		rejected++
	}
	return pairs
}

// shuffled returns a uniformly shuffled copy of pool.
func (g *Generator) shuffled(pool []ridership.Record) []ridership.Record {
	out := make([]ridership.Record, len(pool))
	copy(out, pool)
	g.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
