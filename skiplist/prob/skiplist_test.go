package prob

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/emirpasic/gods/utils"

	"github.com/Hakuto4838/probskip/skiplist"
	"github.com/Hakuto4838/probskip/skiplist/analyTool"
)

// cycleLevels hands out the given levels in order, wrapping around.
func cycleLevels(levels ...int) LevelSource {
	i := 0
	return LevelFunc(func(int) int {
		lvl := levels[i%len(levels)]
		i++
		return lvl
	})
}

func TestListInterface(t *testing.T) {
	var _ skiplist.Map[string, string] = (*List[string, string])(nil)
	var _ skiplist.Analyable[int64, float64] = (*List[int64, float64])(nil)
	var _ skiplist.Nodelike[int, int] = (*node[int, int])(nil)
}

func TestEmptyList(t *testing.T) {
	called := false
	sl := New[string, string](WithLevelSource(LevelFunc(func(int) int {
		called = true
		return 1
	})))

	if v, ok := sl.Search("s4"); ok || v != "" {
		t.Errorf("Search on empty list = (%q, %v), want (\"\", false)", v, ok)
	}
	if sl.Delete("s4") {
		t.Error("Delete on empty list reported a removal")
	}
	if sl.Len() != 0 || sl.Level() != 0 {
		t.Errorf("empty list len=%d level=%d, want 0 0", sl.Len(), sl.Level())
	}
	if len(sl.head.forward) != 0 {
		t.Errorf("head grew to %d links without an insert", len(sl.head.forward))
	}
	if called {
		t.Error("level source consulted without an insert")
	}
	for range sl.All() {
		t.Fatal("All yielded on an empty list")
	}
}

func TestReferenceScenario(t *testing.T) {
	sl := New[string, string](WithSeed(42))

	for _, k := range []string{"s1", "s2", "s3"} {
		key, old, existed := sl.Insert(k, k)
		if key != k || old != "" || existed {
			t.Errorf("Insert(%q) = (%q, %q, %v), want (%q, \"\", false)", k, key, old, existed, k)
		}
	}
	if sl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", sl.Len())
	}

	key, old, existed := sl.Insert("s3", "s3_1")
	if key != "s3" || old != "s3" || !existed {
		t.Errorf("Insert(s3, s3_1) = (%q, %q, %v), want (s3, s3, true)", key, old, existed)
	}
	if sl.Len() != 3 {
		t.Errorf("Len() after upsert = %d, want 3", sl.Len())
	}
	if v, ok := sl.Search("s3"); !ok || v != "s3_1" {
		t.Errorf("Search(s3) = (%q, %v), want (s3_1, true)", v, ok)
	}

	if !sl.Delete("s1") {
		t.Error("Delete(s1) reported nothing removed")
	}
	if sl.Len() != 2 {
		t.Errorf("Len() after delete = %d, want 2", sl.Len())
	}
	if _, ok := sl.Search("s1"); ok {
		t.Error("Search(s1) found a deleted key")
	}

	if sl.Delete("s1") {
		t.Error("second Delete(s1) reported a removal")
	}
	if sl.Len() != 2 {
		t.Errorf("Len() after no-op delete = %d, want 2", sl.Len())
	}
	if err := analyTool.CheckStruct[string, string](sl); err != nil {
		t.Fatal(err)
	}
}

func TestUpsertKeepsStructure(t *testing.T) {
	sl := New[int, string](WithLevelSource(cycleLevels(2, 1, 3)))
	sl.Insert(10, "a")
	sl.Insert(20, "b")
	sl.Insert(30, "c")
	before := slices.Clone(sl.head.forward)
	level := sl.Level()

	for i := 0; i < 5; i++ {
		if _, _, existed := sl.Insert(20, "again"); !existed {
			t.Fatal("Insert of existing key created a node")
		}
	}
	if sl.Len() != 3 || sl.Level() != level {
		t.Errorf("upsert changed shape: len=%d level=%d", sl.Len(), sl.Level())
	}
	if !slices.Equal(before, sl.head.forward) {
		t.Error("upsert rewired head links")
	}
	if v, _ := sl.Get(20); v != "again" {
		t.Errorf("Get(20) = %q, want again", v)
	}
}

func TestLevelGrowsAndShrinks(t *testing.T) {
	sl := New[string, int](WithLevelSource(cycleLevels(1, 4, 2)))
	sl.Insert("a", 1) // level 1
	sl.Insert("b", 2) // level 4
	sl.Insert("c", 3) // level 2

	if sl.Level() != 4 {
		t.Fatalf("Level() = %d, want 4", sl.Level())
	}
	if got := analyTool.CountLevel[string, int](sl); !slices.Equal(got, []int{3, 2, 1, 1}) {
		t.Errorf("CountLevel = %v, want [3 2 1 1]", got)
	}

	sl.Delete("b")
	if sl.Level() != 2 {
		t.Errorf("Level() after deleting tallest = %d, want 2", sl.Level())
	}
	if len(sl.head.forward) != 4 {
		t.Errorf("head shrank to %d links", len(sl.head.forward))
	}
	if err := analyTool.CheckStruct[string, int](sl); err != nil {
		t.Fatal(err)
	}

	sl.Delete("a")
	sl.Delete("c")
	if sl.Level() != 0 || sl.Len() != 0 {
		t.Errorf("drained list len=%d level=%d, want 0 0", sl.Len(), sl.Level())
	}
	if _, ok := sl.Search("c"); ok {
		t.Error("Search found a key in a drained list")
	}

	sl.Insert("d", 4) // level 1
	if sl.Level() != 1 || sl.Len() != 1 {
		t.Errorf("reuse after drain: len=%d level=%d", sl.Len(), sl.Level())
	}
	if err := analyTool.CheckStruct[string, int](sl); err != nil {
		t.Fatal(err)
	}
}

func TestLevelSourceIsClamped(t *testing.T) {
	sl := New[int, int](WithMaxLevel(3), WithLevelSource(cycleLevels(0, 9, -2, 3)))
	for i := 0; i < 8; i++ {
		sl.Insert(i, i)
	}
	for n := sl.head.forward[0]; n != nil; n = n.forward[0] {
		if l := len(n.forward); l < 1 || l > 3 {
			t.Errorf("node %d has level %d outside [1, 3]", n.key, l)
		}
	}
	if sl.Level() > sl.MaxLevel() {
		t.Errorf("Level() %d exceeds MaxLevel() %d", sl.Level(), sl.MaxLevel())
	}
}

func TestCoinFlipDeterministic(t *testing.T) {
	a, b := NewCoinFlip(7), NewCoinFlip(7)
	for i := 0; i < 1000; i++ {
		la, lb := a.RandomLevel(DefaultMaxLevel), b.RandomLevel(DefaultMaxLevel)
		if la != lb {
			t.Fatalf("draw %d: %d != %d with the same seed", i, la, lb)
		}
	}

	build := func() []int {
		sl := New[int, int](WithSeed(99))
		for i := 0; i < 200; i++ {
			sl.Insert(i, i)
		}
		var levels []int
		for n := sl.head.forward[0]; n != nil; n = n.forward[0] {
			levels = append(levels, len(n.forward))
		}
		return levels
	}
	if !slices.Equal(build(), build()) {
		t.Error("same seed produced different node levels")
	}
}

func TestCoinFlipDistribution(t *testing.T) {
	const draws = 200000
	src := NewCoinFlip(2024)
	counts := make([]int, DefaultMaxLevel+1)
	for i := 0; i < draws; i++ {
		lvl := src.RandomLevel(DefaultMaxLevel)
		if lvl < 1 || lvl > DefaultMaxLevel {
			t.Fatalf("level %d outside [1, %d]", lvl, DefaultMaxLevel)
		}
		counts[lvl]++
	}
	// P(k) = 2^-k below the cap, the cap keeps the tail mass 2^-(max-1).
	want := []float64{0, 0.5, 0.25, 0.125, 0.0625, 0.0625}
	for k := 1; k <= DefaultMaxLevel; k++ {
		got := float64(counts[k]) / draws
		if d := got - want[k]; d > 0.01 || d < -0.01 {
			t.Errorf("P(level=%d) = %.4f, want %.4f", k, got, want[k])
		}
	}
}

func TestRandomOpsAgainstMap(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	sl := New[int, int](WithSeed(3))
	oracle := map[int]int{}

	for i := 0; i < 5000; i++ {
		k := r.IntN(300)
		switch r.IntN(3) {
		case 0, 1:
			v := r.Int()
			_, old, existed := sl.Insert(k, v)
			want, had := oracle[k]
			if existed != had || (had && old != want) {
				t.Fatalf("Insert(%d) = (%d, %v), oracle (%d, %v)", k, old, existed, want, had)
			}
			oracle[k] = v
			if got, ok := sl.Search(k); !ok || got != v {
				t.Fatalf("round trip Search(%d) = (%d, %v), want (%d, true)", k, got, ok, v)
			}
		case 2:
			_, had := oracle[k]
			if removed := sl.Delete(k); removed != had {
				t.Fatalf("Delete(%d) = %v, oracle had %v", k, removed, had)
			}
			delete(oracle, k)
			if _, ok := sl.Search(k); ok {
				t.Fatalf("Search(%d) after delete found the key", k)
			}
		}
		if sl.Len() != len(oracle) {
			t.Fatalf("Len() = %d, oracle %d", sl.Len(), len(oracle))
		}
		if sl.Level() > sl.MaxLevel() {
			t.Fatalf("Level() %d exceeds %d", sl.Level(), sl.MaxLevel())
		}
		if i%97 == 0 {
			if err := analyTool.CheckStruct[int, int](sl); err != nil {
				t.Fatalf("after op %d: %v", i, err)
			}
		}
	}
	if err := analyTool.CheckStruct[int, int](sl); err != nil {
		t.Fatal(err)
	}

	var keys []int
	for k, v := range sl.All() {
		if oracle[k] != v {
			t.Errorf("All yielded %d=%d, oracle %d", k, v, oracle[k])
		}
		keys = append(keys, k)
	}
	if !slices.IsSorted(keys) || len(keys) != len(oracle) {
		t.Errorf("All yielded %d keys, sorted=%v; want %d sorted", len(keys), slices.IsSorted(keys), len(oracle))
	}
	for k := 300; k < 320; k++ {
		if sl.Contains(k) {
			t.Errorf("Contains(%d) for a key never inserted", k)
		}
	}
}

func TestCustomComparator(t *testing.T) {
	desc := func(a, b int) int { return b - a }
	sl := NewWithComparator[int, string](desc, WithSeed(5))
	for i := 1; i <= 6; i++ {
		sl.Put(i, "")
	}
	var keys []int
	for k := range sl.All() {
		keys = append(keys, k)
	}
	if !slices.Equal(keys, []int{6, 5, 4, 3, 2, 1}) {
		t.Errorf("descending comparator order = %v", keys)
	}
}

func TestGodsComparatorMismatch(t *testing.T) {
	sl := NewWithComparator[any, string](FromGods[any](utils.IntComparator), WithSeed(11))
	sl.Insert(1, "one")
	sl.Insert(2, "two")
	if v, ok := sl.Search(2); !ok || v != "two" {
		t.Fatalf("Search(2) = (%q, %v)", v, ok)
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("recovered %v (%T), want an error", r, r)
		}
		var ce *CompareError
		if !errors.As(err, &ce) || !errors.Is(err, ErrIncomparable) {
			t.Fatalf("recovered %v, want *CompareError wrapping ErrIncomparable", err)
		}
		if sl.Len() != 2 {
			t.Errorf("failed insert changed Len() to %d", sl.Len())
		}
	}()
	sl.Insert("three", "three")
	t.Fatal("Insert with an incomparable key did not panic")
}

func BenchmarkInsert(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 1))
	sl := New[int64, float64](WithMaxLevel(32), WithSeed(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sl.Put(r.Int64(), 0)
	}
}
