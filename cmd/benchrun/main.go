// Command benchrun replays SLBENCH1 workloads against skip lists with
// different height limits and reports timing and average search steps.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/avamsi/ergo/assert"
	"github.com/olekukonko/tablewriter"

	"github.com/Hakuto4838/probskip/config"
	"github.com/Hakuto4838/probskip/datastream"
	"github.com/Hakuto4838/probskip/skiplist"
	"github.com/Hakuto4838/probskip/skiplist/analyTool"
	"github.com/Hakuto4838/probskip/skiplist/prob"
)

type benchStats struct {
	avgMs, minMs, maxMs float64
	avgSteps            float64
	size, level         int
}

func main() {
	var file, dir, planPath, levels string
	var runs, dumpNodes int
	var seed uint64
	var verbose bool

	flag.StringVar(&file, "file", "", "bench file (SLBENCH1 format)")
	flag.StringVar(&dir, "dir", "", "directory of .bin bench files")
	flag.StringVar(&planPath, "config", "", "JSON run plan; overrides the other flags")
	flag.StringVar(&levels, "levels", "ref:5,16,32", "variants as name:maxLevel, comma separated")
	flag.Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "seed for level assignment")
	flag.IntVar(&runs, "runs", 5, "how many times to repeat each benchmark")
	flag.IntVar(&dumpNodes, "dump", 0, "dump the first N nodes of each final list (0 = off)")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	var plan *config.Plan
	if planPath != "" {
		plan = assert.Ok(config.Load(planPath))
	} else {
		plan = &config.Plan{Runs: runs, DumpNodes: dumpNodes}
		plan.Variants = assert.Ok(config.ParseVariants(levels, seed))
		switch {
		case dir != "":
			plan.Files = assert.Ok(collectBenchFiles(dir))
		case file != "":
			plan.Files = []string{file}
		}
	}
	plan.Runs = max(plan.Runs, 1)
	if len(plan.Files) == 0 {
		slog.Error("no bench files: pass -file, -dir or -config")
		os.Exit(2)
	}
	slog.Info("plan", "files", len(plan.Files), "variants", len(plan.Variants), "runs", plan.Runs)

	totals := make(map[string][]benchStats, len(plan.Variants))
	for idx, path := range plan.Files {
		bf, err := datastream.ReadBenchFile(path)
		if err != nil {
			slog.Error("skip bench file", "file", path, "error", err)
			continue
		}
		slog.Info("bench file", "n", idx+1, "of", len(plan.Files), "file", filepath.Base(path),
			"ops", len(bf.Ops), "entropy", bf.Entropy())

		rows := make([][]string, 0, len(plan.Variants))
		for _, v := range plan.Variants {
			stats, sl := benchmarkVariant(bf, v, plan.Runs)
			totals[v.Name] = append(totals[v.Name], stats)
			rows = append(rows, []string{
				v.Name,
				fmt.Sprintf("%d", v.MaxLevel),
				fmt.Sprintf("%.3f", stats.avgMs),
				fmt.Sprintf("%.3f", stats.minMs),
				fmt.Sprintf("%.3f", stats.maxMs),
				formatOpsPerSec(len(bf.Ops), stats.avgMs),
				formatSteps(stats.avgSteps),
				fmt.Sprintf("%d/%d", stats.size, stats.level),
			})
			if plan.DumpNodes > 0 {
				assert.Nil(analyTool.Dump[skiplist.K, skiplist.V](os.Stdout, sl, v.Name, plan.DumpNodes))
			}
		}
		renderTable(os.Stdout, []string{"Variant", "MaxLevel", "Avg(ms)", "Min(ms)", "Max(ms)", "Ops/s", "AvgSteps", "Len/Level"}, rows)
	}

	if len(plan.Files) > 1 {
		fmt.Println("AGGREGATE (across all bench files)")
		rows := make([][]string, 0, len(plan.Variants))
		for _, v := range plan.Variants {
			all := totals[v.Name]
			if len(all) == 0 {
				continue
			}
			var avg, steps []float64
			minMs, maxMs := math.Inf(1), math.Inf(-1)
			for _, s := range all {
				avg = append(avg, s.avgMs)
				minMs = min(minMs, s.minMs)
				maxMs = max(maxMs, s.maxMs)
				if !math.IsNaN(s.avgSteps) {
					steps = append(steps, s.avgSteps)
				}
			}
			avgSteps := math.NaN()
			if len(steps) > 0 {
				avgSteps = average(steps)
			}
			rows = append(rows, []string{
				v.Name,
				fmt.Sprintf("%d", len(all)*plan.Runs),
				fmt.Sprintf("%.3f", average(avg)),
				fmt.Sprintf("%.3f", minMs),
				fmt.Sprintf("%.3f", maxMs),
				formatSteps(avgSteps),
			})
		}
		renderTable(os.Stdout, []string{"Variant", "Total Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "AvgSteps"}, rows)
	}
}

// collectBenchFiles 收集指定目錄下所有 .bin 檔案，依檔名排序
func collectBenchFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".bin" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// benchmarkVariant replays bf runs times on fresh lists and returns the
// timings plus the list built by the last run.
func benchmarkVariant(bf *datastream.BenchFile, v config.Variant, runs int) (benchStats, *prob.List[skiplist.K, skiplist.V]) {
	durations := make([]float64, 0, runs)
	var sl *prob.List[skiplist.K, skiplist.V]
	for i := 0; i < runs; i++ {
		sl = prob.New[skiplist.K, skiplist.V](prob.WithMaxLevel(v.MaxLevel), prob.WithSeed(v.Seed+uint64(i)))
		start := time.Now()
		hits := bf.ToSequenceModel().Replay(sl, func(k skiplist.K) skiplist.V { return bf.Dist[k] })
		elapsed := time.Since(start)
		durations = append(durations, float64(elapsed.Microseconds())/1000.0)
		slog.Debug("run", "variant", v.Name, "run", i, "elapsed", elapsed, "hits", hits)
	}

	stats := benchStats{avgSteps: math.NaN()}
	stats.size, stats.level = sl.GetMaxStats()
	if err := analyTool.CheckStruct[skiplist.K, skiplist.V](sl); err != nil {
		slog.Error("structure check failed", "variant", v.Name, "error", err)
	} else {
		stats.avgSteps, _ = analyTool.AnalyzeStep[skiplist.K, skiplist.V](sl, bf.Dist)
	}

	slices.Sort(durations)
	stats.avgMs = average(durations)
	if len(durations) > 0 {
		stats.minMs = durations[0]
		stats.maxMs = durations[len(durations)-1]
	}
	return stats, sl
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func formatSteps(s float64) string {
	if math.IsNaN(s) {
		return "N/A"
	}
	return fmt.Sprintf("%.6f", s)
}

// formatOpsPerSec 計算吞吐量；耗時為 0 時無法計算
func formatOpsPerSec(ops int, avgMs float64) string {
	if avgMs <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", float64(ops)/(avgMs/1000))
}

// average 計算平均值
func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
