package prob

import "math/rand/v2"

type options struct {
	maxLevel int
	source   LevelSource
}

// Option configures a List at construction time.
type Option func(*options)

// WithMaxLevel caps node height. Values below 1 keep DefaultMaxLevel.
func WithMaxLevel(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.maxLevel = n
		}
	}
}

// WithSeed fixes the coin used for level assignment.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.source = NewCoinFlip(seed)
	}
}

// WithLevelSource replaces the level generator entirely.
func WithLevelSource(src LevelSource) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{maxLevel: DefaultMaxLevel}
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		o.source = NewCoinFlip(rand.Uint64())
	}
	return o
}
