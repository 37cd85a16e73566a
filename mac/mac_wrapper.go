// Package mac wraps a set of MAC primitives into a single keyset-aware MAC.
package mac

import (
	"errors"

	"github.com/pablobaxter/tink/cryptofmt"
	"github.com/pablobaxter/tink/keyset"
	"github.com/pablobaxter/tink/primitiveset"
	"github.com/pablobaxter/tink/tink"
)

var (
	// ErrNoPrimary is returned when wrapping a set without a primary entry.
	ErrNoPrimary = errors.New("mac: primitive set has no primary")
	// ErrVerificationFailed is the uniform error for every failed
	// verification, regardless of which candidate keys were tried.
	ErrVerificationFailed = errors.New("mac: verification failed")

	errNilSet = errors.New("mac: primitive set must not be nil")
)

type wrappedMAC struct {
	set *primitiveset.PrimitiveSet[tink.MAC]
}

// New returns a MAC that computes tags with the primary entry of set and
// dispatches verification by tag prefix. The set must have a primary.
func New(set *primitiveset.PrimitiveSet[tink.MAC]) (tink.MAC, error) {
	if set == nil {
		return nil, errNilSet
	}
	if set.Primary() == nil {
		return nil, ErrNoPrimary
	}
	return &wrappedMAC{set: set}, nil
}

// legacyData returns data with the LEGACY marker byte appended. LEGACY keys
// authenticate data||0x00; the copy keeps the caller's slice untouched.
func legacyData(data []byte) []byte {
	out := make([]byte, 0, len(data)+1)
	out = append(out, data...)
	return append(out, cryptofmt.LegacyStartByte)
}

func (w *wrappedMAC) ComputeMAC(data []byte) ([]byte, error) {
	primary := w.set.Primary()
	if primary.PrefixType == keyset.Legacy {
		data = legacyData(data)
	}
	tag, err := primary.Primitive.ComputeMAC(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(primary.Prefix)+len(tag))
	out = append(out, primary.Prefix...)
	out = append(out, tag...)
	return out, nil
}

func (w *wrappedMAC) VerifyMAC(mac, data []byte) error {
	if len(mac) > cryptofmt.NonRawPrefixSize {
		prefix := string(mac[:cryptofmt.NonRawPrefixSize])
		if entries, err := w.set.EntriesForPrefix(prefix); err == nil {
			rawMAC := mac[cryptofmt.NonRawPrefixSize:]
			for _, e := range entries {
				d := data
				if e.PrefixType == keyset.Legacy {
					d = legacyData(data)
				}
				if err := e.Primitive.VerifyMAC(rawMAC, d); err == nil {
					return nil
				}
			}
		}
	}
	// No prefixed key matched; try all RAW keys on the whole tag.
	if entries, err := w.set.RawEntries(); err == nil {
		for _, e := range entries {
			if err := e.Primitive.VerifyMAC(mac, data); err == nil {
				return nil
			}
		}
	}
	return ErrVerificationFailed
}
