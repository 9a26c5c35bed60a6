package quiz

import (
	"math/rand"
	"time"
)

// Shuffler randomizes question and option order.
type Shuffler struct {
	rnd *rand.Rand
}

// NewShuffler returns a Shuffler seeded with seed, or with the current time when seed is 0.
func NewShuffler(seed int64) *Shuffler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Shuffler{rnd: rand.New(rand.NewSource(seed))}
}

// Shuffle returns a uniformly permuted copy of items (Fisher-Yates).
func Shuffle[T any](rnd *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Questions shuffles question order and, independently, each question's options.
func (s *Shuffler) Questions(questions []Question) []Question {
	out := Shuffle(s.rnd, questions)
	for i := range out {
		out[i].Options = Shuffle(s.rnd, out[i].Options)
	}
	return out
}
