package main

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/rtcore/pool"
	"github.com/utkarsh5026/rtcore/timer"
)

// schedulerResult is published on the bus once a pool has drained.
type schedulerResult struct {
	Name    string
	Workers int
	Tasks   int
	Total   time.Duration
	Latency latencyStats
}

type sizedExecutor interface {
	pool.Executor
	Size() int
}

// benchScheduler submits s.tasks busy-loop tasks to p from s.producers
// goroutines and records, per task, the time from submission until a worker
// started running it.
func benchScheduler(
	ctx context.Context,
	name string,
	p sizedExecutor,
	s settings,
	tm *timer.Timer,
	bar *progressbar.ProgressBar,
) (schedulerResult, error) {
	latencies := make([]time.Duration, s.tasks)
	futures := make([]*pool.Future[struct{}], s.tasks)

	var limiter *rate.Limiter
	if s.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.rate), s.producers)
	}

	total := tm.Start()
	g, gctx := errgroup.WithContext(ctx)
	for w := range s.producers {
		g.Go(func() error {
			for i := w; i < s.tasks; i += s.producers {
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				}

				queued := tm.Start()
				f, err := pool.SubmitFunc(p, func() {
					latencies[i] = queued.Elapsed()
					spin(s.spin)
				})
				if err != nil {
					return fmt.Errorf("%s: submit task %d: %w", name, i, err)
				}
				futures[i] = f
			}
			return nil
		})
	}

	// Submitted tasks still run after a producer failure; wait for them so
	// latencies is no longer written to.
	submitErr := g.Wait()
	for _, f := range futures {
		if f == nil {
			continue
		}
		if _, err := f.Get(); err != nil {
			return schedulerResult{}, fmt.Errorf("%s: task failed: %w", name, err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if submitErr != nil {
		return schedulerResult{}, submitErr
	}

	return schedulerResult{
		Name:    name,
		Workers: p.Size(),
		Tasks:   s.tasks,
		Total:   total.Elapsed(),
		Latency: summarize(latencies),
	}, nil
}

// spin burns CPU with an xorshift loop the compiler cannot drop.
func spin(iterations int) uint64 {
	x := uint64(88172645463325252)
	for range iterations {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
	}
	return x
}
