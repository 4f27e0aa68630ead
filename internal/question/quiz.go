package question

import (
	"math/rand/v2"
	"sync"
)

// Source supplies uniform random indexes in [0, n).
type Source interface {
	IntN(n int) int
}

// GlobalSource draws from the math/rand/v2 top-level generator, which is safe for concurrent use.
type GlobalSource struct{}

func (GlobalSource) IntN(n int) int { return rand.IntN(n) }

type seededSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededSource returns a deterministic Source safe for concurrent use.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

// Draw picks a random question from pool whose id is not in previous.
// It redraws from the full pool up to len(pool) times, then falls back to a
// uniform pick among the unseen questions. previous is never modified.
func Draw(pool []Question, previous []int64, src Source) (Question, error) {
	if len(pool) == 0 {
		return Question{}, ErrEmptyPool
	}
	if src == nil {
		src = GlobalSource{}
	}

	seen := make(map[int64]struct{}, len(previous))
	for _, id := range previous {
		seen[id] = struct{}{}
	}

	for attempt := 0; attempt < len(pool); attempt++ {
		q := pool[src.IntN(len(pool))]
		if _, ok := seen[q.ID]; !ok {
			return q, nil
		}
	}

	unseen := make([]Question, 0, len(pool))
	for _, q := range pool {
		if _, ok := seen[q.ID]; !ok {
			unseen = append(unseen, q)
		}
	}
	if len(unseen) == 0 {
		return Question{}, ErrPoolExhausted
	}
	return unseen[src.IntN(len(unseen))], nil
}
