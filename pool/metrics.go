package pool

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/utkarsh5026/rtcore/pool"

const (
	kindStandard = "standard"
	kindPriority = "priority"
)

// poolMetrics holds the counters every pool reports. Instruments that fail to
// register degrade to no-ops; metrics never affect scheduling.
type poolMetrics struct {
	attrs     metric.MeasurementOption
	submitted metric.Int64Counter
	completed metric.Int64Counter
	failed    metric.Int64Counter
	rejected  metric.Int64Counter
	reg       metric.Registration
}

func newPoolMetrics(mp metric.MeterProvider, kind string, depth func() int, log *zap.Logger) *poolMetrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	m := &poolMetrics{
		attrs: metric.WithAttributeSet(attribute.NewSet(attribute.String("pool.kind", kind))),
	}

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{task}"))
		if err != nil {
			log.Warn("metric instrument unavailable", zap.String("instrument", name), zap.Error(err))
			return noop.Int64Counter{}
		}
		return c
	}

	m.submitted = counter("rtcore.pool.tasks.submitted", "Tasks accepted into the queue")
	m.completed = counter("rtcore.pool.tasks.completed", "Tasks that ran without error")
	m.failed = counter("rtcore.pool.tasks.failed", "Tasks that returned an error or panicked")
	m.rejected = counter("rtcore.pool.tasks.rejected", "Submissions refused after shutdown")

	gauge, err := meter.Int64ObservableGauge("rtcore.pool.queue.depth",
		metric.WithDescription("Tasks waiting for a worker"),
		metric.WithUnit("{task}"))
	if err != nil {
		log.Warn("metric instrument unavailable", zap.String("instrument", "rtcore.pool.queue.depth"), zap.Error(err))
		return m
	}

	m.reg, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(depth()), m.attrs)
		return nil
	}, gauge)
	if err != nil {
		log.Warn("queue depth callback not registered", zap.Error(err))
	}

	return m
}

func (m *poolMetrics) add(c metric.Int64Counter) {
	c.Add(context.Background(), 1, m.attrs)
}

func (m *poolMetrics) close() {
	if m.reg != nil {
		_ = m.reg.Unregister()
	}
}
