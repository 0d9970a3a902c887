//go:build linux

package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPinToCore_Linux(t *testing.T) {
	var (
		pinErr  error
		maskErr error
		mask    unix.CPUSet
	)
	onLockedThread(func() {
		pinErr = PinToCore(0)
		if pinErr == nil {
			maskErr = unix.SchedGetaffinity(0, &mask)
		}
	})

	if pinErr != nil {
		// A restricted cpuset may exclude core 0; nothing else is acceptable.
		assert.ErrorIs(t, pinErr, unix.EINVAL)
		return
	}
	require.NoError(t, maskErr)
	assert.Equal(t, 1, mask.Count())
	assert.True(t, mask.IsSet(0))
}

func TestSetRealtimePriority_Linux(t *testing.T) {
	var err error
	onLockedThread(func() {
		err = SetRealtimePriority()
	})

	// Unprivileged processes are refused both SCHED_FIFO and a negative nice.
	if err != nil {
		assert.True(t, errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM), "unexpected error: %v", err)
	}
}
