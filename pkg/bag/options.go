package bag

import (
	"math/rand"
	"time"
)

// Source picks the random position for Grab. *rand.Rand satisfies it.
type Source interface {
	// Intn returns a value in [0, n)
	Intn(n int) int
}

type Option func(*options)

type options struct {
	rng Source
}

// WithRand injects the random source used by Grab.
func WithRand(rng Source) Option {
	return func(o *options) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// WithSeed uses a math/rand source seeded with seed. A zero seed falls back to
// the current time.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.rng = NewSeededRand(seed)
	}
}

// NewSeededRand returns a *rand.Rand for seed, or a time-seeded one when seed is 0.
func NewSeededRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.rng == nil {
		o.rng = NewSeededRand(0)
	}
	return o
}
