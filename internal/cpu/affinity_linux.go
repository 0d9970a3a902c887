//go:build linux

package cpu

import (
	"golang.org/x/sys/unix"
)

// nicest is the most favourable time-shared priority.
const nicest = -20

// PinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
//
// cpuID is folded into [0, NumCPU()-1].
func PinToCore(cpuID int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(CoreFor(cpuID))

	return unix.SchedSetaffinity(0, &mask) // 0 = current thread
}

// SetRealtimePriority moves the current thread into SCHED_FIFO at the highest
// priority the kernel reports. When that is refused (no CAP_SYS_NICE, rlimit)
// it falls back to nice -20, and only reports an error when both fail.
func SetRealtimePriority() error {
	prio, _, errno := unix.RawSyscall(unix.SYS_SCHED_GET_PRIORITY_MAX, unix.SCHED_FIFO, 0, 0)
	if errno == 0 {
		attr := &unix.SchedAttr{
			Policy:   unix.SCHED_FIFO,
			Priority: uint32(prio), // #nosec G115 -- kernel returns 1..99
		}
		if err := unix.SchedSetAttr(0, attr, 0); err == nil {
			return nil
		}
	}

	// On Linux PRIO_PROCESS with who=0 addresses the calling thread.
	return unix.Setpriority(unix.PRIO_PROCESS, 0, nicest)
}
