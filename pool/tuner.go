package pool

import "github.com/utkarsh5026/rtcore/internal/cpu"

// ThreadTuner is the capability a PriorityWorkerPool worker uses to claim
// real-time treatment for its OS thread. Both calls act on the calling thread
// and are best effort: errors are logged and otherwise ignored.
type ThreadTuner interface {
	// SetRealtimePriority requests the highest fixed-priority scheduling class,
	// falling back to the most favourable time-shared priority.
	SetRealtimePriority() error

	// PinToCore restricts the calling thread to the given logical CPU.
	PinToCore(cpuID int) error
}

// osThreadTuner forwards to the platform implementation. On platforms without
// the primitives both calls return cpu.ErrUnsupported.
type osThreadTuner struct{}

func (osThreadTuner) SetRealtimePriority() error { return cpu.SetRealtimePriority() }

func (osThreadTuner) PinToCore(cpuID int) error { return cpu.PinToCore(cpuID) }

// DefaultThreadTuner returns the tuner backed by the host OS.
func DefaultThreadTuner() ThreadTuner {
	return osThreadTuner{}
}
