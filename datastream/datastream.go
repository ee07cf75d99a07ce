// Package datastream generates, stores and replays operation workloads for
// the skip list benchmarks.
package datastream

import (
	"github.com/Hakuto4838/probskip/skiplist"
)

// OperationType 表示操作種類
type OperationType uint8

const (
	OpQuery OperationType = iota
	OpInsert
	OpDelete
)

func (t OperationType) String() string {
	switch t {
	case OpQuery:
		return "Query"
	case OpInsert:
		return "Insert"
	case OpDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Operation 表示一筆操作
type Operation struct {
	Type OperationType
	Key  skiplist.K
}

// SequenceModel 以既有的 Operation 序列提供順序重播
type SequenceModel struct {
	ops []Operation
	pos int
}

// NewSequenceModel copies ops so later changes to the caller's slice do not leak in.
func NewSequenceModel(ops []Operation) *SequenceModel {
	cp := make([]Operation, len(ops))
	copy(cp, ops)
	return &SequenceModel{ops: cp}
}

// Next 回傳下一筆操作，若結束則回傳零值與 false
func (m *SequenceModel) Next() (Operation, bool) {
	if m.pos >= len(m.ops) {
		return Operation{}, false
	}
	op := m.ops[m.pos]
	m.pos++
	return op, true
}

// NextN returns up to n further operations.
func (m *SequenceModel) NextN(n int) []Operation {
	if n <= 0 || m.pos >= len(m.ops) {
		return nil
	}
	end := min(m.pos+n, len(m.ops))
	out := make([]Operation, end-m.pos)
	copy(out, m.ops[m.pos:end])
	m.pos = end
	return out
}

// Reset 游標重置到起點
func (m *SequenceModel) Reset() { m.pos = 0 }

// Replay applies every remaining operation to sl. Inserted values come from
// value(key). It returns how many queries and deletes hit an existing key.
func (m *SequenceModel) Replay(sl skiplist.Map[skiplist.K, skiplist.V], value func(skiplist.K) skiplist.V) (hits int) {
	for {
		op, ok := m.Next()
		if !ok {
			return hits
		}
		switch op.Type {
		case OpQuery:
			if _, found := sl.Get(op.Key); found {
				hits++
			}
		case OpInsert:
			sl.Put(op.Key, value(op.Key))
		case OpDelete:
			if sl.Remove(op.Key) {
				hits++
			}
		}
	}
}
