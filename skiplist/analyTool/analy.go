package analyTool

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Hakuto4838/probskip/skiplist"
)

// ErrBrokenStructure is wrapped by every CheckStruct failure.
var ErrBrokenStructure = errors.New("broken skip list structure")

// StepMap 記錄每個 key 的搜尋步數
type StepMap[K comparable] map[K]int

// CheckStruct 檢查 skip list 的結構是否正確
//
// Every layer must be strictly increasing, every node must be linked into
// exactly the layers it owns, and the layer-0 walk must visit Len() nodes.
func CheckStruct[K any, V any](sl skiplist.Analyable[K, V]) error {
	size, level := sl.GetMaxStats()
	head := sl.GetHead()
	if head == nil {
		return fmt.Errorf("%w: nil head", ErrBrokenStructure)
	}
	if head.GetLevel() < level {
		return fmt.Errorf("%w: head has %d links, level is %d", ErrBrokenStructure, head.GetLevel(), level)
	}
	if level > 0 && head.GetNextAt(level-1) == nil {
		return fmt.Errorf("%w: top layer %d is empty", ErrBrokenStructure, level-1)
	}
	for i := level; i < head.GetLevel(); i++ {
		if head.GetNextAt(i) != nil {
			return fmt.Errorf("%w: head links layer %d above level %d", ErrBrokenStructure, i, level)
		}
	}

	// last[i] 為第 i 層目前走到的節點
	last := make([]skiplist.Nodelike[K, V], level)
	for i := range last {
		last[i] = head
	}

	count := 0
	for node := head.GetNextAt(0); node != nil; node = node.GetNextAt(0) {
		count++
		lv := node.GetLevel()
		if lv < 1 || lv > level {
			return fmt.Errorf("%w: node %v has level %d, list level %d", ErrBrokenStructure, node.GetKey(), lv, level)
		}
		if last[0] != head && sl.Compare(last[0].GetKey(), node.GetKey()) >= 0 {
			return fmt.Errorf("%w: layer 0 keys %v, %v out of order", ErrBrokenStructure, last[0].GetKey(), node.GetKey())
		}
		for i := 1; i < lv; i++ {
			if last[i].GetNextAt(i) != node {
				return fmt.Errorf("%w: node %v missing from layer %d", ErrBrokenStructure, node.GetKey(), i)
			}
		}
		for i := 0; i < lv; i++ {
			last[i] = node
		}
		if count > size {
			return fmt.Errorf("%w: layer 0 longer than size %d", ErrBrokenStructure, size)
		}
	}
	if count != size {
		return fmt.Errorf("%w: layer 0 has %d nodes, size is %d", ErrBrokenStructure, count, size)
	}
	for i, n := range last {
		if n.GetNextAt(i) != nil {
			return fmt.Errorf("%w: layer %d links past its last owner %v", ErrBrokenStructure, i, n.GetNextAt(i).GetKey())
		}
	}
	return nil
}

// FindStep 計算找到指定 key 的總步數和各層步數
//
// A step is one move to the right or one drop to the next layer.
func FindStep[K any, V any](sl skiplist.Analyable[K, V], key K) (int, []int) {
	_, level := sl.GetMaxStats()
	perLayer := make([]int, level)
	cur := sl.GetHead()
	total := 0
	for h := level - 1; h >= 0; h-- {
		for {
			next := cur.GetNextAt(h)
			if next == nil || sl.Compare(next.GetKey(), key) >= 0 {
				break
			}
			cur = next
			perLayer[h]++
		}
		if next := cur.GetNextAt(h); next != nil && sl.Compare(next.GetKey(), key) == 0 {
			perLayer[h]++
			total += perLayer[h]
			return total, perLayer
		}
		total += perLayer[h]
		if h > 0 {
			total++
		}
	}
	return total, perLayer
}

// AnalyzeStep 根據 key 出現機率計算平均搜尋步數
func AnalyzeStep[K comparable, V any](sl skiplist.Analyable[K, V], weights map[K]float64) (float64, StepMap[K]) {
	if len(weights) == 0 {
		return 0, nil
	}
	steps := StepMap[K]{}
	var expected, total float64
	for k, p := range weights {
		if !sl.Contains(k) {
			continue
		}
		s, _ := FindStep(sl, k)
		steps[k] = s
		expected += float64(s) * p
		total += p
	}
	if total == 0 {
		return 0, steps
	}
	return expected / total, steps
}

// CountLevel 回傳每層的節點數量，index 0 為最底層
func CountLevel[K any, V any](sl skiplist.Analyable[K, V]) []int {
	_, level := sl.GetMaxStats()
	counts := make([]int, level)
	for node := sl.GetHead().GetNextAt(0); node != nil; node = node.GetNextAt(0) {
		for i := 0; i < node.GetLevel() && i < level; i++ {
			counts[i]++
		}
	}
	return counts
}

// Sorted returns the recorded step counts ordered by key.
func (mp StepMap[K]) Sorted(compare func(a, b K) int) []KeySteps[K] {
	out := make([]KeySteps[K], 0, len(mp))
	for k, s := range mp {
		out = append(out, KeySteps[K]{Key: k, Steps: s})
	}
	sort.Slice(out, func(i, j int) bool {
		return compare(out[i].Key, out[j].Key) < 0
	})
	return out
}

type KeySteps[K any] struct {
	Key   K
	Steps int
}
