// Command demo walks a small string-keyed skip list through inserts,
// upserts, lookups and deletes, dumping its layers along the way.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/avamsi/ergo/assert"
	"github.com/emirpasic/gods/utils"

	"github.com/Hakuto4838/probskip/skiplist/analyTool"
	"github.com/Hakuto4838/probskip/skiplist/prob"
)

// newList 依 keys 選擇比較方式：ordered 用 cmp.Compare，gods 用 gods 的字串比較器
func newList(keys string, opts ...prob.Option) (*prob.List[string, string], error) {
	switch keys {
	case "ordered":
		return prob.New[string, string](opts...), nil
	case "gods":
		return prob.NewWithComparator[string, string](prob.FromGods[string](utils.StringComparator), opts...), nil
	default:
		return nil, fmt.Errorf("unknown key ordering %q (want ordered or gods)", keys)
	}
}

func main() {
	var seed uint64
	var maxLevel int
	var keys string
	var verbose bool

	flag.Uint64Var(&seed, "seed", 0, "seed for level assignment (0 = random)")
	flag.IntVar(&maxLevel, "maxLevel", prob.DefaultMaxLevel, "maximum node level")
	flag.StringVar(&keys, "keys", "ordered", "key ordering: ordered or gods")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	opts := []prob.Option{prob.WithMaxLevel(maxLevel)}
	if seed != 0 {
		opts = append(opts, prob.WithSeed(seed))
	}
	sl := assert.Ok(newList(keys, opts...))
	slog.Debug("list", "keys", keys)

	v, ok := sl.Search("s4")
	slog.Info("search", "key", "s4", "value", v, "found", ok)

	insert := func(key, value string) {
		k, old, existed := sl.Insert(key, value)
		slog.Info("insert", "key", k, "previous", old, "existed", existed, "len", sl.Len())
	}
	insert("s1", "s1")
	insert("s2", "s2")
	insert("s3", "s3")
	sl.Put("s3", "s3_setitem")
	insert("s3", "s3_1")
	insert("s3", "s3_2")
	insert("s3", "s3_3")
	insert("s4", "s422")
	insert("s4", "s4_2")
	insert("s4", "s4_3")

	for _, key := range []string{"s3", "s4"} {
		v, ok := sl.Search(key)
		slog.Info("search", "key", key, "value", v, "found", ok)
	}
	assert.Nil(analyTool.CheckStruct[string, string](sl))
	assert.Nil(analyTool.Dump[string, string](os.Stdout, sl, "Insert", 0))

	for _, key := range []string{"s1", "s2", "s1"} {
		removed := sl.Remove(key)
		slog.Info("delete", "key", key, "removed", removed, "len", sl.Len(), "level", sl.Level())
	}
	assert.Nil(analyTool.CheckStruct[string, string](sl))
	assert.Nil(analyTool.Dump[string, string](os.Stdout, sl, "Delete", 0))

	slog.Debug("done", "len", sl.Len(), "level", sl.Level(), "maxLevel", sl.MaxLevel())
}
