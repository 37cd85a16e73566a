// Package aead turns a set of AEAD primitives into a single AEAD that follows
// the keyset dispatch rules: encrypt with the primary key, decrypt with
// whichever key the ciphertext prefix points at.
package aead

import (
	"errors"

	"github.com/pablobaxter/tink/cryptofmt"
	"github.com/pablobaxter/tink/primitiveset"
	"github.com/pablobaxter/tink/tink"
)

var (
	// ErrNoPrimary is returned when wrapping a set without a primary entry.
	ErrNoPrimary = errors.New("aead: primitive set has no primary")
	// ErrDecryptionFailed is the uniform error for every failed decryption.
	// It deliberately carries no detail about which candidate key failed.
	ErrDecryptionFailed = errors.New("aead: decryption failed")

	errNilSet = errors.New("aead: primitive set must not be nil")
)

type wrappedAEAD struct {
	set *primitiveset.PrimitiveSet[tink.AEAD]
}

// New returns an AEAD that encrypts with the primary entry of set and
// dispatches decryption by ciphertext prefix. The set must have a primary.
func New(set *primitiveset.PrimitiveSet[tink.AEAD]) (tink.AEAD, error) {
	if set == nil {
		return nil, errNilSet
	}
	if set.Primary() == nil {
		return nil, ErrNoPrimary
	}
	return &wrappedAEAD{set: set}, nil
}

func (w *wrappedAEAD) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	primary := w.set.Primary()
	ct, err := primary.Primitive.Encrypt(plaintext, associatedData)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(primary.Prefix)+len(ct))
	out = append(out, primary.Prefix...)
	out = append(out, ct...)
	return out, nil
}

func (w *wrappedAEAD) Decrypt(ciphertext, associatedData []byte) ([]byte, error) {
	// A prefixed ciphertext is at least prefix + one primitive byte.
	if len(ciphertext) > cryptofmt.NonRawPrefixSize {
		prefix := string(ciphertext[:cryptofmt.NonRawPrefixSize])
		if entries, err := w.set.EntriesForPrefix(prefix); err == nil {
			raw := ciphertext[cryptofmt.NonRawPrefixSize:]
			for _, e := range entries {
				if pt, err := e.Primitive.Decrypt(raw, associatedData); err == nil {
					return pt, nil
				}
			}
		}
	}
	// No prefixed key succeeded; try all RAW keys on the whole input.
	if entries, err := w.set.RawEntries(); err == nil {
		for _, e := range entries {
			if pt, err := e.Primitive.Decrypt(ciphertext, associatedData); err == nil {
				return pt, nil
			}
		}
	}
	return nil, ErrDecryptionFailed
}
