//go:build !linux && !darwin

package securemem

// Lock is a no-op on platforms without mlock.
func Lock(b []byte) error { return nil }

// Unlock is a no-op on platforms without mlock.
func Unlock(b []byte) error { return nil }
