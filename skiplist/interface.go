package skiplist

// K and V are the key/value types used by the workload tooling.
type K = int64
type V = float64

// Map is the ordered key/value surface every list in this module offers.
type Map[Key any, Val any] interface {
	Contains(key Key) bool
	Get(key Key) (Val, bool)
	Put(key Key, value Val)
	Remove(key Key) bool
	Len() int
}

// Analyable 提供分析功能的介面
type Analyable[Key any, Val any] interface {
	Map[Key, Val]
	GetHead() Nodelike[Key, Val]
	// GetMaxStats 回傳節點數與目前使用中的層數
	GetMaxStats() (size int, level int)
	Compare(a, b Key) int
}

// Nodelike exposes a node read-only. GetLevel is the number of forward
// links the node owns; GetNextAt returns nil past the end of a layer.
type Nodelike[Key any, Val any] interface {
	GetKey() Key
	GetValue() Val
	GetLevel() int
	GetNextAt(layer int) Nodelike[Key, Val]
}
