// Package signature wraps sets of Signer/Verifier primitives into keyset-aware
// signing and verification.
package signature

import (
	"errors"

	"github.com/pablobaxter/tink/cryptofmt"
	"github.com/pablobaxter/tink/keyset"
	"github.com/pablobaxter/tink/primitiveset"
	"github.com/pablobaxter/tink/tink"
)

var (
	// ErrNoPrimary is returned when wrapping a set without a primary entry.
	ErrNoPrimary = errors.New("signature: primitive set has no primary")
	// ErrVerificationFailed is the uniform error for every failed signature
	// verification.
	ErrVerificationFailed = errors.New("signature: verification failed")

	errNilSet = errors.New("signature: primitive set must not be nil")
)

// legacyData returns data with the LEGACY marker byte appended. LEGACY keys
// sign data||0x00.
func legacyData(data []byte) []byte {
	out := make([]byte, 0, len(data)+1)
	out = append(out, data...)
	return append(out, cryptofmt.LegacyStartByte)
}

type wrappedSigner struct {
	set *primitiveset.PrimitiveSet[tink.Signer]
}

// NewSigner returns a Signer that signs with the primary entry of set and
// prepends the primary's output prefix to each signature.
func NewSigner(set *primitiveset.PrimitiveSet[tink.Signer]) (tink.Signer, error) {
	if set == nil {
		return nil, errNilSet
	}
	if set.Primary() == nil {
		return nil, ErrNoPrimary
	}
	return &wrappedSigner{set: set}, nil
}

func (w *wrappedSigner) Sign(data []byte) ([]byte, error) {
	primary := w.set.Primary()
	if primary.PrefixType == keyset.Legacy {
		data = legacyData(data)
	}
	sig, err := primary.Primitive.Sign(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(primary.Prefix)+len(sig))
	out = append(out, primary.Prefix...)
	out = append(out, sig...)
	return out, nil
}

type wrappedVerifier struct {
	set *primitiveset.PrimitiveSet[tink.Verifier]
}

// NewVerifier returns a Verifier that dispatches on the signature prefix and
// falls back to trying all RAW keys. A set used only for verification does
// not need a primary.
func NewVerifier(set *primitiveset.PrimitiveSet[tink.Verifier]) (tink.Verifier, error) {
	if set == nil {
		return nil, errNilSet
	}
	return &wrappedVerifier{set: set}, nil
}

func (w *wrappedVerifier) Verify(signature, data []byte) error {
	if len(signature) > cryptofmt.NonRawPrefixSize {
		prefix := string(signature[:cryptofmt.NonRawPrefixSize])
		if entries, err := w.set.EntriesForPrefix(prefix); err == nil {
			rawSig := signature[cryptofmt.NonRawPrefixSize:]
			for _, e := range entries {
				d := data
				if e.PrefixType == keyset.Legacy {
					d = legacyData(data)
				}
				if err := e.Primitive.Verify(rawSig, d); err == nil {
					return nil
				}
			}
		}
	}
	// No prefixed key matched; try all RAW keys on the whole signature.
	if entries, err := w.set.RawEntries(); err == nil {
		for _, e := range entries {
			if err := e.Primitive.Verify(signature, data); err == nil {
				return nil
			}
		}
	}
	return ErrVerificationFailed
}
