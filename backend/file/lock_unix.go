//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package file

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockExclusive takes a non-blocking advisory exclusive lock on f, so that a second
// process cannot also open the same device or image for read-write cursor mutation
// while this one holds it. Mirrors the disk package's use of f.Fd() for ioctl calls.
func lockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}
