// Command genbench writes SLBENCH1 workload files for benchrun.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/avamsi/ergo/assert"

	"github.com/Hakuto4838/probskip/datastream"
)

// parseScientific 解析科學記號字串（如 "1e5"）為整數
func parseScientific(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%s out of range", s)
	}
	return int(f), nil
}

// formatScientific 將數字格式化為科學記號（用於檔名），如 1000 -> 1e3
func formatScientific(n int) string {
	if n == 0 {
		return "0"
	}
	exp := 0
	div := 1
	for n/div >= 10 {
		div *= 10
		exp++
	}
	coef := float64(n) / float64(div)
	if coef == math.Trunc(coef) {
		return fmt.Sprintf("%de%d", int(coef), exp)
	}
	return fmt.Sprintf("%.1fe%d", coef, exp)
}

// formatDecimal 將浮點數格式化為檔名可用的字串，如 1.07 -> 1_07
func formatDecimal(f float64) string {
	val := int(math.Round(f * 100))
	switch {
	case val%100 == 0:
		return fmt.Sprintf("%d", val/100)
	case val%10 == 0:
		return fmt.Sprintf("%d_%d", val/100, (val%100)/10)
	default:
		return fmt.Sprintf("%d_%02d", val/100, val%100)
	}
}

func benchName(n, k int, s, v, phase1Ratio, deleteRatio float64) string {
	return fmt.Sprintf("bench_n%s_k%s_s%s_v%s_p1r%s_dr%s",
		formatScientific(n), formatScientific(k),
		formatDecimal(s), formatDecimal(v),
		formatDecimal(phase1Ratio), formatDecimal(deleteRatio))
}

func main() {
	var out, path, nStr, kStr string
	var s, v, phase1Ratio, deleteRatio float64
	var seed int64
	var nums int
	var simple bool

	flag.StringVar(&nStr, "n", "1e3", "number of keys (scientific notation allowed, e.g. 1e5)")
	flag.StringVar(&kStr, "k", "1e4", "number of operations (scientific notation allowed)")
	flag.Float64Var(&s, "s", 1.07, "Zipf exponent s (> 1), 0 selects a uniform distribution")
	flag.Float64Var(&v, "v", 1.0, "Zipf offset v (>= 1)")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed; file i uses seed+i")
	flag.Float64Var(&phase1Ratio, "phase1Ratio", 0.5, "share of operations in the covering phase")
	flag.Float64Var(&deleteRatio, "deleteRatio", 0.1, "chance a present key is deleted instead of queried")
	flag.IntVar(&nums, "nums", 1, "number of files to generate")
	flag.StringVar(&out, "out", "", "output filename prefix (derived from parameters if empty)")
	flag.StringVar(&path, "path", ".", "output directory")
	flag.BoolVar(&simple, "simple", false, "use keys 0..n-1 instead of random uint32 keys")
	flag.Parse()

	n := assert.Ok(parseScientific(nStr))
	k := assert.Ok(parseScientific(kStr))
	if out == "" {
		out = benchName(n, k, s, v, phase1Ratio, deleteRatio)
	}
	assert.Nil(os.MkdirAll(path, 0o755))

	slog.Info("generating", "n", n, "k", k, "s", s, "v", v,
		"phase1Ratio", phase1Ratio, "deleteRatio", deleteRatio,
		"seed", seed, "nums", nums, "path", path, "prefix", out)

	plan := datastream.Plan{Ops: k, Phase1Ratio: phase1Ratio, DeleteRatio: deleteRatio, SimpleKeys: simple}
	for i := 0; i < nums; i++ {
		filename := out + ".bin"
		if nums > 1 {
			filename = fmt.Sprintf("%s_%d.bin", out, i)
		}
		outfile := filepath.Join(path, filename)

		src, err := datastream.NewZipf(n, s, v, uint64(seed+int64(i)))
		if err != nil {
			slog.Error("bad distribution", "error", err)
			os.Exit(2)
		}
		bf, err := datastream.GenerateOps(src, plan)
		if err != nil {
			slog.Error("bad plan", "error", err)
			os.Exit(2)
		}
		assert.Nil(datastream.SaveBenchFile(outfile, bf))
		slog.Info("wrote", "file", outfile, "ops", len(bf.Ops), "entropy", bf.Entropy())
	}
}
