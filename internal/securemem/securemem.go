// Package securemem offers best-effort hygiene for buffers holding key
// material: wiping them after use and, where the platform supports it,
// keeping them out of swap.
package securemem

// Zero overwrites a byte slice in memory with zeros.
// This version works on all operating systems.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
