// Package hybrid wraps sets of hybrid-encryption primitives into keyset-aware
// encryption to a recipient and prefix-dispatched decryption.
package hybrid

import (
	"errors"

	"github.com/pablobaxter/tink/cryptofmt"
	"github.com/pablobaxter/tink/primitiveset"
	"github.com/pablobaxter/tink/tink"
)

var (
	// ErrNoPrimary is returned when wrapping an encrypt set without a primary.
	ErrNoPrimary = errors.New("hybrid: primitive set has no primary")
	// ErrDecryptionFailed is the uniform error for every failed decryption.
	ErrDecryptionFailed = errors.New("hybrid: decryption failed")

	errNilSet = errors.New("hybrid: primitive set must not be nil")
)

type wrappedEncrypt struct {
	set *primitiveset.PrimitiveSet[tink.HybridEncrypt]
}

// NewEncrypt returns a HybridEncrypt that encrypts with the primary entry of
// set and prepends the primary's output prefix.
func NewEncrypt(set *primitiveset.PrimitiveSet[tink.HybridEncrypt]) (tink.HybridEncrypt, error) {
	if set == nil {
		return nil, errNilSet
	}
	if set.Primary() == nil {
		return nil, ErrNoPrimary
	}
	return &wrappedEncrypt{set: set}, nil
}

func (w *wrappedEncrypt) Encrypt(plaintext, contextInfo []byte) ([]byte, error) {
	primary := w.set.Primary()
	ct, err := primary.Primitive.Encrypt(plaintext, contextInfo)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(primary.Prefix)+len(ct))
	out = append(out, primary.Prefix...)
	out = append(out, ct...)
	return out, nil
}

type wrappedDecrypt struct {
	set *primitiveset.PrimitiveSet[tink.HybridDecrypt]
}

// NewDecrypt returns a HybridDecrypt that dispatches on the ciphertext prefix
// and falls back to trying all RAW keys. A decrypt-only set does not need a
// primary.
func NewDecrypt(set *primitiveset.PrimitiveSet[tink.HybridDecrypt]) (tink.HybridDecrypt, error) {
	if set == nil {
		return nil, errNilSet
	}
	return &wrappedDecrypt{set: set}, nil
}

func (w *wrappedDecrypt) Decrypt(ciphertext, contextInfo []byte) ([]byte, error) {
	if len(ciphertext) > cryptofmt.NonRawPrefixSize {
		prefix := string(ciphertext[:cryptofmt.NonRawPrefixSize])
		if entries, err := w.set.EntriesForPrefix(prefix); err == nil {
			raw := ciphertext[cryptofmt.NonRawPrefixSize:]
			for _, e := range entries {
				if pt, err := e.Primitive.Decrypt(raw, contextInfo); err == nil {
					return pt, nil
				}
			}
		}
	}
	if entries, err := w.set.RawEntries(); err == nil {
		for _, e := range entries {
			if pt, err := e.Primitive.Decrypt(ciphertext, contextInfo); err == nil {
				return pt, nil
			}
		}
	}
	return nil, ErrDecryptionFailed
}
