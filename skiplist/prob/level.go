package prob

import (
	"math/rand/v2"
)

const (
	// DefaultMaxLevel bounds the height of any node when no option overrides it.
	DefaultMaxLevel = 5
	probability     = 0.5
)

// LevelSource draws the level of a freshly inserted node.
type LevelSource interface {
	RandomLevel(maxLevel int) int
}

type coinFlip struct {
	rand *rand.Rand
}

// NewCoinFlip returns the standard geometric level generator: start at 1 and
// keep climbing while a fair coin says so, stopping at maxLevel.
func NewCoinFlip(seed uint64) LevelSource {
	return &coinFlip{rand: rand.New(rand.NewPCG(seed, 0))}
}

func (c *coinFlip) RandomLevel(maxLevel int) int {
	lvl := 1
	for lvl < maxLevel && c.rand.Float64() < probability {
		lvl++
	}
	return lvl
}

// LevelFunc adapts a plain function to LevelSource.
type LevelFunc func(maxLevel int) int

func (f LevelFunc) RandomLevel(maxLevel int) int {
	return f(maxLevel)
}

func clampLevel(lvl, maxLevel int) int {
	if lvl < 1 {
		return 1
	}
	if lvl > maxLevel {
		return maxLevel
	}
	return lvl
}
