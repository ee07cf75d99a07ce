// Package prob implements an ordered map on top of a probabilistic skip list.
//
// Every node owns a fixed number of forward links drawn from a geometric
// distribution when it is inserted. Layer 0 links every key in ascending
// order; each higher layer links a subset of the layer below it. A List is
// not safe for concurrent use.
package prob

import (
	"cmp"
	"iter"

	"github.com/Hakuto4838/probskip/skiplist"
)

type node[K any, V any] struct {
	key     K
	value   V
	forward []*node[K, V]
}

func newNode[K any, V any](key K, value V, level int) *node[K, V] {
	return &node[K, V]{
		key:     key,
		value:   value,
		forward: make([]*node[K, V], level),
	}
}

// List is a skip list keyed by K.
type List[K any, V any] struct {
	head     *node[K, V]
	level    int // 目前使用中的最高層數，空表為 0
	length   int
	maxLevel int
	compare  Comparator[K]
	source   LevelSource
}

// New creates an empty list ordered by cmp.Compare.
func New[K cmp.Ordered, V any](opts ...Option) *List[K, V] {
	return NewWithComparator[K, V](cmp.Compare[K], opts...)
}

// NewWithComparator creates an empty list ordered by compare.
func NewWithComparator[K any, V any](compare Comparator[K], opts ...Option) *List[K, V] {
	o := buildOptions(opts)
	return &List[K, V]{
		head:     &node[K, V]{},
		maxLevel: o.maxLevel,
		compare:  compare,
		source:   o.source,
	}
}

// findPredecessors returns, for every active layer, the last node whose key
// is below key, together with the first node at layer 0 that is not.
func (sl *List[K, V]) findPredecessors(key K) ([]*node[K, V], *node[K, V]) {
	if sl.level == 0 {
		return nil, nil
	}
	update := make([]*node[K, V], sl.level)
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.forward[i] != nil && sl.compare(x.forward[i].key, key) < 0 {
			x = x.forward[i]
		}
		update[i] = x
	}
	return update, x.forward[0]
}

func (sl *List[K, V]) find(key K) *node[K, V] {
	_, next := sl.findPredecessors(key)
	if next != nil && sl.compare(next.key, key) == 0 {
		return next
	}
	return nil
}

// Insert stores value under key. If key was already present its value is
// replaced in place and the previous value is returned with existed == true.
func (sl *List[K, V]) Insert(key K, value V) (K, V, bool) {
	if n := sl.find(key); n != nil {
		old := n.value
		n.value = value
		return key, old, true
	}

	lvl := clampLevel(sl.source.RandomLevel(sl.maxLevel), sl.maxLevel)
	nd := newNode(key, value, lvl)
	sl.level = max(sl.level, lvl)
	for len(sl.head.forward) < sl.level {
		sl.head.forward = append(sl.head.forward, nil)
	}

	update, _ := sl.findPredecessors(key)
	for i := 0; i < lvl; i++ {
		nd.forward[i] = update[i].forward[i]
		update[i].forward[i] = nd
	}
	sl.length++

	var zero V
	return key, zero, false
}

// Search returns the value stored under key.
func (sl *List[K, V]) Search(key K) (V, bool) {
	if n := sl.find(key); n != nil {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Delete unlinks key from every layer it occupies. Deleting a missing key
// changes nothing and reports false.
func (sl *List[K, V]) Delete(key K) bool {
	update, target := sl.findPredecessors(key)
	if target == nil || sl.compare(target.key, key) != 0 {
		return false
	}
	for i := sl.level - 1; i >= 0; i-- {
		if update[i].forward[i] != target {
			continue
		}
		update[i].forward[i] = target.forward[i]
	}
	for sl.level > 0 && sl.head.forward[sl.level-1] == nil {
		sl.level--
	}
	sl.length--
	return true
}

// Len is the number of stored keys.
func (sl *List[K, V]) Len() int {
	return sl.length
}

// Level is the number of layers currently in use.
func (sl *List[K, V]) Level() int {
	return sl.level
}

// MaxLevel is the height limit for new nodes.
func (sl *List[K, V]) MaxLevel() int {
	return sl.maxLevel
}

// Compare orders two keys the way the list does.
func (sl *List[K, V]) Compare(a, b K) int {
	return sl.compare(a, b)
}

// All yields every entry in ascending key order. The list must not be
// modified while iterating.
func (sl *List[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if len(sl.head.forward) == 0 {
			return
		}
		for n := sl.head.forward[0]; n != nil; n = n.forward[0] {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// Put, Get, Contains and Remove implement skiplist.Map.

func (sl *List[K, V]) Put(key K, value V) {
	sl.Insert(key, value)
}

func (sl *List[K, V]) Get(key K) (V, bool) {
	return sl.Search(key)
}

func (sl *List[K, V]) Contains(key K) bool {
	return sl.find(key) != nil
}

func (sl *List[K, V]) Remove(key K) bool {
	return sl.Delete(key)
}

func (sl *List[K, V]) GetHead() skiplist.Nodelike[K, V] {
	return sl.head
}

func (sl *List[K, V]) GetMaxStats() (int, int) {
	return sl.length, sl.level
}

func (n *node[K, V]) GetKey() K {
	return n.key
}

func (n *node[K, V]) GetValue() V {
	return n.value
}

func (n *node[K, V]) GetLevel() int {
	return len(n.forward)
}

func (n *node[K, V]) GetNextAt(layer int) skiplist.Nodelike[K, V] {
	if layer < 0 || layer >= len(n.forward) || n.forward[layer] == nil {
		return nil
	}
	return n.forward[layer]
}
