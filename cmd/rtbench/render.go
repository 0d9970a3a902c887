package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

func printSectionHeader(title string, lines ...string) {
	fmt.Println()
	_, _ = bold.Println(title)
	for _, l := range lines {
		fmt.Println(l)
	}
	fmt.Println()
}

func printConfiguration(s settings, clockOverhead time.Duration) {
	_, _ = bold.Println("Configuration:")
	fmt.Printf("  Tasks per pool:   %s\n", formatNumber(s.tasks))
	fmt.Printf("  WorkerPool:       %d workers\n", s.workers)
	fmt.Printf("  PriorityPool:     %d workers\n", s.rtWorkers)
	fmt.Printf("  Producers:        %d\n", s.producers)
	if s.rate > 0 {
		fmt.Printf("  Rate limit:       %.0f tasks/sec (at least %s)\n", s.rate, s.expectedDuration().Round(time.Millisecond))
	} else {
		fmt.Printf("  Rate limit:       none\n")
	}
	fmt.Printf("  Allocations:      %s per allocator\n", formatNumber(s.allocs))
	fmt.Printf("  Clock overhead:   %s per read\n", formatLatency(clockOverhead))
	fmt.Println()
}

func renderScheduler(results []schedulerResult) {
	if len(results) == 0 {
		return
	}

	printSectionHeader("SCHEDULER LATENCY",
		"Time from Submit until a worker starts the task (lower is better)")

	fastest := lo.MinBy(results, func(a, b schedulerResult) bool { return a.Total < b.Total }).Total

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Pool", "Workers", "Tasks", "Time", "Tasks/sec", "Avg", "P50", "P99", "Max", "vs Fastest")
	for _, r := range results {
		_ = table.Append(
			r.Name,
			strconv.Itoa(r.Workers),
			formatNumber(r.Tasks),
			r.Total.Round(time.Millisecond).String(),
			formatNumber(int(perSecond(r.Tasks, r.Total))),
			formatLatency(r.Latency.Avg),
			formatLatency(r.Latency.P50),
			formatLatency(r.Latency.P99),
			formatLatency(r.Latency.Max),
			vsFastest(r.Total, fastest),
		)
	}
	if err := table.Render(); err != nil {
		_, _ = red.Println("Error rendering scheduler table:", err)
	}
}

func renderAllocators(results []allocResult) {
	if len(results) == 0 {
		return
	}

	printSectionHeader("ALLOCATOR THROUGHPUT",
		"Allocate/release pairs, batches of 64 held at a time")

	slices.SortFunc(results, func(a, b allocResult) int {
		return cmp.Compare(nsPerOp(a), nsPerOp(b))
	})
	best := nsPerOp(results[0])

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Rank", "Allocator", "Goroutines", "Ops", "Time", "ns/op", "vs Fastest")
	for i, r := range results {
		ratio := "baseline"
		if i > 0 && best > 0 {
			ratio = fmt.Sprintf("%.2fx", nsPerOp(r)/best)
		}
		_ = table.Append(
			strconv.Itoa(i+1),
			r.Name,
			strconv.Itoa(r.Goroutines),
			formatNumber(r.Ops),
			r.Total.Round(time.Millisecond).String(),
			fmt.Sprintf("%.1f", nsPerOp(r)),
			ratio,
		)
	}
	if err := table.Render(); err != nil {
		_, _ = red.Println("Error rendering allocator table:", err)
	}
}

func nsPerOp(r allocResult) float64 {
	if r.Ops == 0 {
		return 0
	}
	return float64(r.Total.Nanoseconds()) / float64(r.Ops)
}

// poolCounters maps pool.kind to instrument name to value.
type poolCounters map[string]map[string]int64

func collectCounters(ctx context.Context, reader *sdkmetric.ManualReader) (poolCounters, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	out := make(poolCounters)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				kind, _ := dp.Attributes.Value(attribute.Key("pool.kind"))
				if out[kind.AsString()] == nil {
					out[kind.AsString()] = make(map[string]int64)
				}
				out[kind.AsString()][m.Name] += dp.Value
			}
		}
	}
	return out, nil
}

func renderCounters(counters poolCounters) {
	if len(counters) == 0 {
		return
	}

	printSectionHeader("POOL COUNTERS")

	kinds := lo.Keys(counters)
	slices.Sort(kinds)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Pool kind", "Submitted", "Completed", "Failed", "Rejected")
	for _, kind := range kinds {
		c := counters[kind]
		_ = table.Append(
			kind,
			formatNumber(int(c["rtcore.pool.tasks.submitted"])),
			formatNumber(int(c["rtcore.pool.tasks.completed"])),
			formatNumber(int(c["rtcore.pool.tasks.failed"])),
			formatNumber(int(c["rtcore.pool.tasks.rejected"])),
		)
	}
	if err := table.Render(); err != nil {
		_, _ = red.Println("Error rendering counter table:", err)
	}

	failed := lo.SumBy(kinds, func(k string) int64 { return counters[k]["rtcore.pool.tasks.failed"] })
	if failed > 0 {
		_, _ = yellow.Printf("%d tasks failed\n", failed)
	} else {
		_, _ = green.Println("All tasks completed")
	}
}
