//go:build linux

package entropy

import (
	"errors"

	"golang.org/x/sys/unix"
)

// readGetrandom fills n bytes with the getrandom(2) system call. EINTR is
// retried; any other error ends the draw with whatever was collected.
func readGetrandom(n int) ([]byte, bool) {
	b := make([]byte, n)
	got := 0
	for got < n {
		m, err := unix.Getrandom(b[got:], 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil || m <= 0 {
			return b[:got], false
		}
		got += m
	}
	return b, true
}
