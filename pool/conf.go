package pool

import (
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ConfigKeyWorkers is the integer setting read by OptionsFromConfig.
const ConfigKeyWorkers = "pool.workers"

// WorkerPoolOption is a functional option for configuring a pool.
type WorkerPoolOption func(*workerPoolConfig)

type workerPoolConfig struct {
	workerCount   int
	logger        *zap.Logger
	meterProvider metric.MeterProvider
	tuner         ThreadTuner
}

// WithWorkerCount sets the number of workers. Non-positive values are ignored.
// If not specified, WorkerPool uses runtime.GOMAXPROCS(0) and
// PriorityWorkerPool uses 2.
func WithWorkerCount(count int) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if count > 0 {
			cfg.workerCount = count
		}
	}
}

// WithLogger sets the logger used for lifecycle events, recovered panics from
// fire-and-forget tasks and best-effort tuning failures.
// Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithMeterProvider sets where pool metrics are reported.
// Defaults to the global provider from otel.GetMeterProvider().
func WithMeterProvider(mp metric.MeterProvider) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if mp != nil {
			cfg.meterProvider = mp
		}
	}
}

// WithThreadTuner replaces the OS priority/affinity calls made by
// PriorityWorkerPool workers at startup. WorkerPool ignores it.
func WithThreadTuner(t ThreadTuner) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if t != nil {
			cfg.tuner = t
		}
	}
}

// IntGetter is the slice of a configuration store the pool needs.
// *config.Store satisfies it.
type IntGetter interface {
	GetInt(key string, def int) int
}

// OptionsFromConfig turns integer settings from c into options.
// Missing or mistyped keys leave the defaults in place.
//
// Example:
//
//	store := config.New()
//	_ = store.LoadFile("rtcore.conf") // pool.workers=8
//	p := pool.NewWorkerPool(pool.OptionsFromConfig(store)...)
func OptionsFromConfig(c IntGetter) []WorkerPoolOption {
	if c == nil {
		return nil
	}
	return []WorkerPoolOption{
		WithWorkerCount(c.GetInt(ConfigKeyWorkers, 0)),
	}
}

func createConfig(defaultWorkers int, opts ...WorkerPoolOption) *workerPoolConfig {
	cfg := &workerPoolConfig{
		workerCount: defaultWorkers,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	return cfg
}
