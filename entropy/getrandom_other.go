//go:build !linux

package entropy

// readGetrandom reports the system call as unavailable on this platform.
func readGetrandom(int) ([]byte, bool) { return nil, false }
