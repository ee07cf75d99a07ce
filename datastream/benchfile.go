package datastream

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"golang.org/x/exp/mmap"

	"github.com/Hakuto4838/probskip/skiplist"
)

// 檔案格式（LittleEndian）：
// [8]byte  Magic: "SLBENCH1"
// uint16   Version: 1
// uint16   Reserved: 0
// uint32   DistCount
// 重複 DistCount 次（key 升冪）：
//   int64   Key
//   float64 Weight
// uint64   OpCount
// 重複 OpCount 次：
//   uint8   OperationType (0=Query,1=Insert,2=Delete)
//   int64   Key

var (
	benchMagic   = [8]byte{'S', 'L', 'B', 'E', 'N', 'C', 'H', '1'}
	benchVersion = uint16(1)

	ErrBadMagic   = errors.New("not a bench file")
	ErrBadVersion = errors.New("unsupported bench file version")
)

// BenchFile is a key distribution plus the operations drawn from it.
type BenchFile struct {
	Dist map[skiplist.K]float64
	Ops  []Operation
}

// Plan controls GenerateOps.
type Plan struct {
	Ops         int     // 總操作數，需 >= n
	Phase1Ratio float64 // 第一階段佔比，第一階段保證每個 key 至少出現一次
	DeleteRatio float64 // key 已存在時產生 Delete 的機率
	SimpleKeys  bool    // true: key 為 0..n-1 洗牌；false: 隨機 uint32
}

// GenerateOps draws plan.Ops operations from src.
//
// Ranks are mapped to distinct keys first. Phase one contains every key at
// least once, padded with draws from src and shuffled; phase two draws from
// src only. A key that is absent is inserted; a present key is deleted with
// probability DeleteRatio and queried otherwise.
func GenerateOps(src KeySource, plan Plan) (*BenchFile, error) {
	n := src.N()
	phase1 := int(float64(plan.Ops) * plan.Phase1Ratio)
	if plan.Ops < n {
		return nil, fmt.Errorf("ops (%d) must be >= n (%d) to ensure each key appears at least once", plan.Ops, n)
	}
	if phase1 < n || phase1 > plan.Ops {
		return nil, fmt.Errorf("phase1 size (%d) must satisfy n <= phase1 <= ops", phase1)
	}
	if plan.DeleteRatio < 0 || plan.DeleteRatio > 1 {
		return nil, fmt.Errorf("deleteRatio (%v) must be between 0.0 and 1.0", plan.DeleteRatio)
	}

	r := src.Rand()
	rankToKey := make([]skiplist.K, n)
	if plan.SimpleKeys {
		for i := range rankToKey {
			rankToKey[i] = skiplist.K(i)
		}
		r.Shuffle(n, func(i, j int) { rankToKey[i], rankToKey[j] = rankToKey[j], rankToKey[i] })
	} else {
		used := make(map[skiplist.K]struct{}, n)
		for i := range rankToKey {
			k := skiplist.K(r.Uint32())
			for _, dup := used[k]; dup; _, dup = used[k] {
				k = skiplist.K(r.Uint32())
			}
			rankToKey[i] = k
			used[k] = struct{}{}
		}
	}

	weights := src.Weights()
	dist := make(map[skiplist.K]float64, n)
	for rank, k := range rankToKey {
		dist[k] = weights[rank]
	}

	keys := make([]skiplist.K, 0, plan.Ops)
	keys = append(keys, rankToKey...)
	for len(keys) < phase1 {
		keys = append(keys, rankToKey[src.Next()])
	}
	r.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	for len(keys) < plan.Ops {
		keys = append(keys, rankToKey[src.Next()])
	}

	present := make(map[skiplist.K]bool, n)
	ops := make([]Operation, len(keys))
	for i, k := range keys {
		op := OpInsert
		if present[k] {
			if r.Float64() < plan.DeleteRatio {
				op = OpDelete
			} else {
				op = OpQuery
			}
		}
		present[k] = op != OpDelete
		ops[i] = Operation{Type: op, Key: k}
	}
	return &BenchFile{Dist: dist, Ops: ops}, nil
}

// Entropy of the key distribution in bits.
func (bf *BenchFile) Entropy() float64 {
	return EntropyFromDist(bf.Dist)
}

// ToSequenceModel 將 BenchFile 轉為可重播的 SequenceModel
func (bf *BenchFile) ToSequenceModel() *SequenceModel {
	if bf == nil {
		return NewSequenceModel(nil)
	}
	return NewSequenceModel(bf.Ops)
}

// WriteBenchFile encodes bf in the SLBENCH1 format.
func WriteBenchFile(w io.Writer, bf *BenchFile) error {
	bw := bufio.NewWriter(w)
	le := binary.LittleEndian

	header := struct {
		Magic    [8]byte
		Version  uint16
		Reserved uint16
		Count    uint32
	}{benchMagic, benchVersion, 0, uint32(len(bf.Dist))}
	if err := binary.Write(bw, le, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	keys := make([]skiplist.K, 0, len(bf.Dist))
	for k := range bf.Dist {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := binary.Write(bw, le, int64(k)); err != nil {
			return fmt.Errorf("write dist: %w", err)
		}
		if err := binary.Write(bw, le, bf.Dist[k]); err != nil {
			return fmt.Errorf("write dist: %w", err)
		}
	}

	if err := binary.Write(bw, le, uint64(len(bf.Ops))); err != nil {
		return fmt.Errorf("write op count: %w", err)
	}
	var rec [9]byte
	for _, op := range bf.Ops {
		rec[0] = uint8(op.Type)
		le.PutUint64(rec[1:], uint64(op.Key))
		if _, err := bw.Write(rec[:]); err != nil {
			return fmt.Errorf("write ops: %w", err)
		}
	}
	return bw.Flush()
}

// SaveBenchFile writes bf to path.
func SaveBenchFile(path string, bf *BenchFile) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteBenchFile(f, bf); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// ReadBenchFile 讀取 bin 檔案，回傳分布與操作序列
func ReadBenchFile(path string) (*BenchFile, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer ra.Close()
	bf, err := DecodeBenchFile(io.NewSectionReader(ra, 0, int64(ra.Len())))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bf, nil
}

// DecodeBenchFile parses the SLBENCH1 format.
func DecodeBenchFile(r io.Reader) (*BenchFile, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian

	var header struct {
		Magic    [8]byte
		Version  uint16
		Reserved uint16
		Count    uint32
	}
	if err := binary.Read(br, le, &header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if header.Magic != benchMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadMagic, header.Magic)
	}
	if header.Version != benchVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, header.Version)
	}

	dist := make(map[skiplist.K]float64, min(header.Count, 1<<20))
	for i := uint32(0); i < header.Count; i++ {
		var entry struct {
			Key    int64
			Weight float64
		}
		if err := binary.Read(br, le, &entry); err != nil {
			return nil, fmt.Errorf("read dist entry %d: %w", i, err)
		}
		dist[skiplist.K(entry.Key)] = entry.Weight
	}

	var opCount uint64
	if err := binary.Read(br, le, &opCount); err != nil {
		return nil, fmt.Errorf("read op count: %w", err)
	}
	ops := make([]Operation, 0, min(opCount, 1<<20))
	var rec [9]byte
	for i := uint64(0); i < opCount; i++ {
		if _, err := io.ReadFull(br, rec[:]); err != nil {
			return nil, fmt.Errorf("read op %d: %w", i, err)
		}
		t := OperationType(rec[0])
		if t > OpDelete {
			return nil, fmt.Errorf("op %d: unknown type %d", i, rec[0])
		}
		ops = append(ops, Operation{Type: t, Key: skiplist.K(le.Uint64(rec[1:]))})
	}
	return &BenchFile{Dist: dist, Ops: ops}, nil
}
