// Command rtbench measures the rtcore schedulers and allocators on this
// machine.
//
// It submits the same workload to a WorkerPool and a PriorityWorkerPool and
// reports queueing latency, then races ObjectPool, LockFree, sync.Pool and
// plain heap allocation.
//
// Usage:
//
//	rtbench [-config rtcore.conf] [-tasks N] [-workers N] [-rt-workers N]
//	        [-producers N] [-rate R] [-allocs N] [-ci]
//
// The priority pool asks for SCHED_FIFO and CPU pinning; run with
// CAP_SYS_NICE (or as root) to get them. Without privileges it still runs,
// with ordinary threads.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/multierr"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/utkarsh5026/rtcore/config"
	"github.com/utkarsh5026/rtcore/eventbus"
	"github.com/utkarsh5026/rtcore/mempool"
	"github.com/utkarsh5026/rtcore/pool"
	"github.com/utkarsh5026/rtcore/timer"
	"github.com/utkarsh5026/rtcore/xlog"
)

func main() {
	s := defaultSettings()
	fs := flag.NewFlagSet("rtbench", flag.ExitOnError)
	s.register(fs)
	_ = fs.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, s, explicitFlags(fs)); err != nil {
		_, _ = red.Fprintln(os.Stderr, "rtbench:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, s settings, explicit map[string]bool) (err error) {
	lvl, err := xlog.ParseLevel(s.logLevel)
	if err != nil {
		return err
	}
	logOpts := []xlog.Option{xlog.WithLevel(lvl)}
	if s.logFile != "" {
		logOpts = append(logOpts, xlog.WithOutputFile(s.logFile))
	}
	logger, err := xlog.New(logOpts...)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, logger.Close()) }()

	undo, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf))
	if err != nil {
		logger.Warn("GOMAXPROCS not adjusted", zap.Error(err))
	}
	defer undo()

	store := config.New()
	if s.configPath != "" {
		if err := store.LoadFile(s.configPath); err != nil {
			return err
		}
		logger.Info("configuration loaded", zap.String("path", s.configPath), zap.Strings("keys", store.Keys()))
	}
	s.applyConfig(store, explicit)
	if err := s.validate(); err != nil {
		return err
	}

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { err = multierr.Append(err, mp.Shutdown(context.Background())) }()

	tm := timer.New(nil)
	printConfiguration(s, tm.Calibrate(10_000))

	// Results travel over the bus so the collectors stay decoupled from the
	// benchmark loops.
	bus := eventbus.New(eventbus.WithLogger(logger.Logger), eventbus.WithAsync())
	var schedResults []schedulerResult
	var allocResults []allocResult
	eventbus.Subscribe(bus, func(r schedulerResult) { schedResults = append(schedResults, r) })
	eventbus.Subscribe(bus, func(r allocResult) { allocResults = append(allocResults, r) })
	eventbus.Subscribe(bus, func(r allocResult) {
		logger.Debug("allocator finished", zap.String("allocator", r.Name), zap.Int64("checksum", r.Checksum))
	})

	if err := runSchedulers(ctx, s, store, logger.Logger, mp, tm, bus); err != nil {
		return multierr.Append(err, bus.Close())
	}
	if err := runAllocators(ctx, s, store, tm, bus); err != nil {
		return multierr.Append(err, bus.Close())
	}

	if err := bus.Close(); err != nil {
		return err
	}

	renderScheduler(schedResults)
	renderAllocators(allocResults)

	counters, err := collectCounters(ctx, reader)
	if err != nil {
		return err
	}
	renderCounters(counters)
	return nil
}

func runSchedulers(
	ctx context.Context,
	s settings,
	store *config.Store,
	logger *zap.Logger,
	mp *sdkmetric.MeterProvider,
	tm *timer.Timer,
	bus *eventbus.Bus,
) error {
	_, _ = bold.Println("Running scheduler benchmarks...")

	bar := newBar(s, 2*s.tasks, "Scheduling")

	common := append(pool.OptionsFromConfig(store),
		pool.WithLogger(logger),
		pool.WithMeterProvider(mp),
	)

	contenders := []struct {
		name  string
		start func() (sizedExecutor, func(time.Duration) error)
	}{
		{"WorkerPool", func() (sizedExecutor, func(time.Duration) error) {
			p := pool.NewWorkerPool(append(slices.Clone(common), pool.WithWorkerCount(s.workers))...)
			return p, p.Shutdown
		}},
		{"PriorityWorkerPool", func() (sizedExecutor, func(time.Duration) error) {
			p := pool.NewPriorityWorkerPool(append(slices.Clone(common), pool.WithWorkerCount(s.rtWorkers))...)
			return p, p.Shutdown
		}},
	}

	for _, c := range contenders {
		if bar != nil {
			bar.Describe(c.name)
		}

		p, shutdown := c.start()
		res, err := benchScheduler(ctx, c.name, p, s, tm, bar)
		if serr := shutdown(10 * time.Second); serr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", c.name, serr))
		}
		if err != nil {
			return err
		}
		if err := eventbus.Publish(bus, res); err != nil {
			return err
		}
		if s.ciMode {
			fmt.Printf("  %s: %s tasks in %s\n", c.name, formatNumber(res.Tasks), res.Total.Round(time.Millisecond))
		}
	}

	finishBar(bar)
	return nil
}

func runAllocators(ctx context.Context, s settings, store *config.Store, tm *timer.Timer, bus *eventbus.Bus) error {
	_, _ = bold.Println("Running allocator benchmarks...")

	concurrent := []allocator{
		lockFreeAllocator(allocBatch * s.allocProcs),
		syncPoolAllocator(),
		heapAllocator(),
	}
	bar := newBar(s, 1+len(concurrent), "Allocating")

	res, err := benchObjectPool(s.allocs, tm, mempool.OptionsFromConfig(store)...)
	if err != nil {
		return fmt.Errorf("ObjectPool: %w", err)
	}
	if err := eventbus.Publish(bus, res); err != nil {
		return err
	}
	addBar(bar)

	for _, a := range concurrent {
		if err := ctx.Err(); err != nil {
			return err
		}
		if bar != nil {
			bar.Describe(a.name)
		}

		res, err := benchConcurrent(a, s.allocs, s.allocProcs, tm)
		if err != nil {
			return fmt.Errorf("%s: %w", a.name, err)
		}
		if err := eventbus.Publish(bus, res); err != nil {
			return err
		}
		addBar(bar)
	}

	finishBar(bar)
	return nil
}

func newBar(s settings, total int, desc string) *progressbar.ProgressBar {
	if s.ciMode {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
	)
}

func addBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Add(1)
	}
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar == nil {
		return
	}
	_ = bar.Finish()
	fmt.Println()
}
