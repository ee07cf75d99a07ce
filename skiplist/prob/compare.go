package prob

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/utils"
)

// ErrIncomparable is wrapped by every CompareError.
var ErrIncomparable = errors.New("keys are not mutually comparable")

// Comparator orders two keys: negative if a < b, zero if equal, positive if a > b.
type Comparator[K any] func(a, b K) int

// CompareError is the panic value raised when a comparator cannot order two keys.
type CompareError struct {
	A, B  any
	Cause any
}

func (e *CompareError) Error() string {
	return fmt.Sprintf("compare %v (%T) with %v (%T): %v", e.A, e.A, e.B, e.B, e.Cause)
}

func (e *CompareError) Unwrap() error {
	return ErrIncomparable
}

// FromGods adapts a gods comparator. gods comparators type-assert their
// arguments, so a key of the wrong dynamic type panics inside them; that
// panic is re-raised as a *CompareError.
func FromGods[K any](c utils.Comparator) Comparator[K] {
	return func(a, b K) (res int) {
		defer func() {
			if r := recover(); r != nil {
				panic(&CompareError{A: a, B: b, Cause: r})
			}
		}()
		return c(a, b)
	}
}
