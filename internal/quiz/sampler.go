package quiz

import (
	"math/rand"
	"sync"
	"time"

	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/validation"
)

// ErrBankEmpty is returned when sampling from a bank with no questions.
var ErrBankEmpty = validation.Newf("bank empty")

// Sampler draws quiz snapshots as a uniform random permutation of the bank.
type Sampler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSampler seeds the shuffle source. A zero seed uses the clock.
func NewSampler(seed int64) *Sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sampler{rnd: rand.New(rand.NewSource(seed))}
}

// Sample returns min(count, len(bank)) distinct deep-copied questions. count
// is clamped to [1, len(bank)].
func (s *Sampler) Sample(bank []question.Question, count int) ([]question.Question, error) {
	n := len(bank)
	if n == 0 {
		return nil, ErrBankEmpty
	}
	if count < 1 {
		count = 1
	}
	if count > n {
		count = n
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	s.mu.Lock()
	s.rnd.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	s.mu.Unlock()

	out := make([]question.Question, count)
	for i := 0; i < count; i++ {
		out[i] = bank[idx[i]].Clone()
	}
	return out, nil
}
