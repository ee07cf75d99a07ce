package datastream

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// KeySource draws key ranks in [0, N()) following some distribution.
type KeySource interface {
	N() int
	Next() int
	// Weights 回傳每個 rank 的理論機率，總和為 1
	Weights() []float64
	// Rand exposes the generator so derived choices stay reproducible.
	Rand() *rand.Rand
}

type zipfSource struct {
	n       int
	rng     *rand.Rand
	zipf    *rand.Zipf
	weights []float64
}

// NewZipf returns a Zipf distributed source over n ranks with
// P(k) ∝ 1/(v+k)^s. s == 0 falls back to NewUniform.
func NewZipf(n int, s, v float64, seed uint64) (KeySource, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid n: %d", n)
	}
	if s == 0 {
		return NewUniform(n, seed)
	}
	if s <= 1 || v < 1 {
		return nil, fmt.Errorf("invalid zipf params: s=%v must be > 1, v=%v must be >= 1", s, v)
	}
	rng := rand.New(rand.NewPCG(seed, 0))
	weights := make([]float64, n)
	var sum float64
	for i := range weights {
		weights[i] = 1.0 / math.Pow(v+float64(i), s)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return &zipfSource{
		n:       n,
		rng:     rng,
		zipf:    rand.NewZipf(rng, s, v, uint64(n-1)),
		weights: weights,
	}, nil
}

func (z *zipfSource) N() int             { return z.n }
func (z *zipfSource) Next() int          { return int(z.zipf.Uint64()) }
func (z *zipfSource) Weights() []float64 { return append([]float64(nil), z.weights...) }
func (z *zipfSource) Rand() *rand.Rand   { return z.rng }

type uniformSource struct {
	n   int
	rng *rand.Rand
}

// NewUniform returns a source where every rank is equally likely.
func NewUniform(n int, seed uint64) (KeySource, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid n: %d", n)
	}
	return &uniformSource{n: n, rng: rand.New(rand.NewPCG(seed, 0))}, nil
}

func (u *uniformSource) N() int    { return u.n }
func (u *uniformSource) Next() int { return u.rng.IntN(u.n) }
func (u *uniformSource) Weights() []float64 {
	w := make([]float64, u.n)
	for i := range w {
		w[i] = 1.0 / float64(u.n)
	}
	return w
}
func (u *uniformSource) Rand() *rand.Rand { return u.rng }

// EntropyFromDist 計算分布的熵（單位：bit），忽略 <= 0 的值
func EntropyFromDist[K comparable](dist map[K]float64) float64 {
	h := 0.0
	for _, p := range dist {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
