//go:build windows

package cpu

import (
	"syscall"
)

const threadPriorityTimeCritical = 15

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	setThreadPriority     = kernel32.NewProc("SetThreadPriority")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// PinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
//
// cpuID is folded into [0, NumCPU()-1]. Cores outside the first processor
// group (64 or above) return ErrUnsupported.
func PinToCore(cpuID int) error {
	mask, err := affinityMask(CoreFor(cpuID))
	if err != nil {
		return err
	}

	handle, _, _ := getCurrentThread.Call()
	prevMask, _, err := setThreadAffinityMask.Call(handle, mask)
	if prevMask == 0 {
		return err
	}
	return nil
}

// SetRealtimePriority raises the current thread to THREAD_PRIORITY_TIME_CRITICAL.
func SetRealtimePriority() error {
	handle, _, _ := getCurrentThread.Call()

	ok, _, err := setThreadPriority.Call(handle, uintptr(threadPriorityTimeCritical))
	if ok == 0 {
		return err
	}
	return nil
}
