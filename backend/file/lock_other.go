//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)
// +build !aix,!darwin,!dragonfly,!freebsd,!linux,!netbsd,!openbsd,!solaris

package file

import "os"

// lockExclusive is a no-op on platforms without flock semantics.
func lockExclusive(_ *os.File) error {
	return nil
}
