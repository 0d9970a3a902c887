package main

import (
	"flag"
	"fmt"
	"runtime"
	"time"

	"github.com/utkarsh5026/rtcore/config"
)

// settings drive one benchmark run. Values come from, in increasing order of
// precedence: built-in defaults, the -config file, explicit flags.
type settings struct {
	configPath string
	logLevel   string
	logFile    string
	ciMode     bool

	tasks      int
	workers    int
	rtWorkers  int
	producers  int
	rate       float64
	spin       int
	allocs     int
	allocProcs int
}

func defaultSettings() settings {
	return settings{
		logLevel:   "info",
		tasks:      100_000,
		workers:    runtime.GOMAXPROCS(0),
		rtWorkers:  2,
		producers:  4,
		spin:       200,
		allocs:     1_000_000,
		allocProcs: runtime.GOMAXPROCS(0),
	}
}

func (s *settings) register(fs *flag.FlagSet) {
	fs.StringVar(&s.configPath, "config", s.configPath, "key=value settings file")
	fs.StringVar(&s.logLevel, "log-level", s.logLevel, "minimum log level (trace, debug, info, warn, error)")
	fs.StringVar(&s.logFile, "log-file", s.logFile, "append logs to this file instead of stdout")
	fs.BoolVar(&s.ciMode, "ci", s.ciMode, "plain output without progress bars")

	fs.IntVar(&s.tasks, "tasks", s.tasks, "tasks submitted to each worker pool")
	fs.IntVar(&s.workers, "workers", s.workers, "WorkerPool size")
	fs.IntVar(&s.rtWorkers, "rt-workers", s.rtWorkers, "PriorityWorkerPool size")
	fs.IntVar(&s.producers, "producers", s.producers, "concurrent submitting goroutines")
	fs.Float64Var(&s.rate, "rate", s.rate, "submissions per second across all producers (0 = unlimited)")
	fs.IntVar(&s.spin, "spin", s.spin, "busy-loop iterations per task")
	fs.IntVar(&s.allocs, "allocs", s.allocs, "allocate/release pairs per allocator")
	fs.IntVar(&s.allocProcs, "alloc-goroutines", s.allocProcs, "goroutines for the concurrent allocators")
}

// Keys read from the -config file.
const (
	keyTasks      = "bench.tasks"
	keyProducers  = "bench.producers"
	keyRate       = "bench.rate"
	keySpin       = "bench.spin"
	keyAllocs     = "bench.allocs"
	keyRTWorkers  = "bench.rt_workers"
	keyWorkers    = "pool.workers"
	keyAllocProcs = "bench.alloc_goroutines"
)

// applyConfig overwrites every setting whose flag was not given explicitly
// with the value from store, when present.
func (s *settings) applyConfig(store *config.Store, explicit map[string]bool) {
	intSetting := func(flagName, key string, dst *int) {
		if !explicit[flagName] {
			*dst = store.GetInt(key, *dst)
		}
	}

	intSetting("tasks", keyTasks, &s.tasks)
	intSetting("producers", keyProducers, &s.producers)
	intSetting("spin", keySpin, &s.spin)
	intSetting("allocs", keyAllocs, &s.allocs)
	intSetting("workers", keyWorkers, &s.workers)
	intSetting("rt-workers", keyRTWorkers, &s.rtWorkers)
	intSetting("alloc-goroutines", keyAllocProcs, &s.allocProcs)

	if !explicit["rate"] {
		// Accept both "bench.rate=500" and "bench.rate=500.0".
		s.rate = store.GetFloat(keyRate, float64(store.GetInt(keyRate, int(s.rate))))
	}
}

func (s *settings) validate() error {
	switch {
	case s.tasks <= 0:
		return fmt.Errorf("tasks must be positive, got %d", s.tasks)
	case s.workers <= 0 || s.rtWorkers <= 0:
		return fmt.Errorf("pool sizes must be positive, got %d and %d", s.workers, s.rtWorkers)
	case s.producers <= 0:
		return fmt.Errorf("producers must be positive, got %d", s.producers)
	case s.rate < 0:
		return fmt.Errorf("rate must not be negative, got %g", s.rate)
	case s.allocs <= 0 || s.allocProcs <= 0:
		return fmt.Errorf("allocs and alloc-goroutines must be positive")
	}
	return nil
}

// expectedDuration is a lower bound on the scheduler phase when rate-limited.
func (s *settings) expectedDuration() time.Duration {
	if s.rate <= 0 {
		return 0
	}
	return time.Duration(float64(2*s.tasks) / s.rate * float64(time.Second))
}

func explicitFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}
