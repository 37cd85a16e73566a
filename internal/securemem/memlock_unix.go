//go:build linux || darwin

package securemem

import "golang.org/x/sys/unix"

// Lock pins b's pages so they are never written to swap.
func Lock(b []byte) error { return unix.Mlock(b) }

// Unlock releases pages pinned by Lock.
func Unlock(b []byte) error { return unix.Munlock(b) }
