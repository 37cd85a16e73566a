// Package keyset holds the metadata attached to each key of a keyset. The key
// material itself is opaque to this library; callers construct primitives from
// it and register them together with a Key value.
package keyset

import "fmt"

// Status tells whether a key may be used.
type Status int

const (
	StatusUnknown Status = iota
	Enabled
	Disabled
)

func (s Status) String() string {
	switch s {
	case Enabled:
		return "ENABLED"
	case Disabled:
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}

// PrefixType selects the output prefix policy of a key: whether ciphertexts
// and signatures produced under it carry a key-identifying prefix, and which
// version byte that prefix starts with.
type PrefixType int

const (
	UnknownPrefix PrefixType = iota
	Tink
	Legacy
	Crunchy
	Raw
)

func (t PrefixType) String() string {
	switch t {
	case Tink:
		return "TINK"
	case Legacy:
		return "LEGACY"
	case Crunchy:
		return "CRUNCHY"
	case Raw:
		return "RAW"
	default:
		return "UNKNOWN"
	}
}

// Key is the immutable metadata of a single keyset key.
type Key struct {
	ID         uint32
	Status     Status
	PrefixType PrefixType
}

func (k Key) String() string {
	return fmt.Sprintf("key %#08x (%s, %s)", k.ID, k.PrefixType, k.Status)
}
