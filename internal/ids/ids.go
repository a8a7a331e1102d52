package ids

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// Identifiers are 10-digit integers.
const (
	Min int64 = 1_000_000_000
	Max int64 = 9_999_999_999

	DefaultMaxAttempts = 64
)

var ErrExhausted = errors.New("ids: no free identifier found")

// ExistsFunc reports whether id is already used as a primary key in the target table.
type ExistsFunc func(id int64) (bool, error)

// Generator picks an identifier that exists reports as unused.
//
// The check and the later insert are not atomic: two generators running
// against the same table can both observe a candidate as free. Callers
// close that window with the primary key constraint and a retry.
type Generator interface {
	Next(exists ExistsFunc) (int64, error)
}

// Random samples uniformly in [Min, Max] until an unused value is found.
type Random struct {
	MaxAttempts int
	Int64N      func(n int64) int64
}

func NewRandom() *Random {
	return &Random{MaxAttempts: DefaultMaxAttempts, Int64N: rand.Int64N}
}

func (r *Random) Next(exists ExistsFunc) (int64, error) {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	intn := r.Int64N
	if intn == nil {
		intn = rand.Int64N
	}
	for i := 0; i < attempts; i++ {
		id := Min + intn(Max-Min+1)
		taken, err := exists(id)
		if err != nil {
			return 0, err
		}
		if !taken {
			return id, nil
		}
	}
	return 0, ErrExhausted
}

// Sequence hands out a fixed list of identifiers in order, skipping the
// ones already taken. Tests use it to get predictable ids.
type Sequence struct {
	mu     sync.Mutex
	values []int64
	pos    int
}

func NewSequence(values ...int64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Next(exists ExistsFunc) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pos < len(s.values) {
		id := s.values[s.pos]
		s.pos++
		taken, err := exists(id)
		if err != nil {
			return 0, err
		}
		if !taken {
			return id, nil
		}
	}
	return 0, ErrExhausted
}
