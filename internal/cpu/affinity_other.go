//go:build !linux && !windows

package cpu

// PinToCore is a no-op here; macOS and the BSDs expose no thread pinning.
func PinToCore(int) error {
	return ErrUnsupported
}

// SetRealtimePriority is a no-op on this platform.
func SetRealtimePriority() error {
	return ErrUnsupported
}
