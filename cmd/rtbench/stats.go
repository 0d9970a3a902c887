package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// latencyStats summarises per-task queueing latency.
type latencyStats struct {
	Avg time.Duration
	P50 time.Duration
	P99 time.Duration
	Max time.Duration
}

func summarize(samples []time.Duration) latencyStats {
	if len(samples) == 0 {
		return latencyStats{}
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	return latencyStats{
		Avg: lo.Sum(sorted) / time.Duration(len(sorted)),
		P50: percentile(sorted, 50),
		P99: percentile(sorted, 99),
		Max: sorted[len(sorted)-1],
	}
}

// percentile uses the nearest-rank method on already sorted samples.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(p/100*float64(len(sorted))+0.5) - 1
	rank = max(0, min(rank, len(sorted)-1))
	return sorted[rank]
}

// formatNumber formats an integer with comma separators.
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// formatLatency formats a duration in the most readable unit.
func formatLatency(d time.Duration) string {
	switch ns := d.Nanoseconds(); {
	case ns == 0:
		return "0"
	case ns < 1_000:
		return fmt.Sprintf("%dns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%.1fµs", float64(ns)/1e3)
	case ns < 1_000_000_000:
		return fmt.Sprintf("%.2fms", float64(ns)/1e6)
	default:
		return fmt.Sprintf("%.2fs", float64(ns)/1e9)
	}
}

func perSecond(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}

func vsFastest(d, fastest time.Duration) string {
	if fastest <= 0 || d == fastest {
		return "baseline"
	}
	return fmt.Sprintf("%.2fx", float64(d)/float64(fastest))
}
