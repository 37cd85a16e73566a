package jwt

import (
	"errors"
	"fmt"

	"github.com/pablobaxter/tink/keyset"
	"github.com/pablobaxter/tink/primitiveset"
)

var (
	// ErrNoPrimary is returned when wrapping a produce set without a primary.
	ErrNoPrimary = errors.New("jwt: primitive set has no primary")
	// ErrJWTVerificationFailed is the uniform error when no key of a keyset
	// accepts a token and no key produced a more specific validation error.
	ErrJWTVerificationFailed = errors.New("jwt: verification failed")

	errNilSet = errors.New("jwt: primitive set must not be nil")
)

// validateEntries rejects keysets with LEGACY or CRUNCHY keys. JWTs dispatch
// on the kid header, which only exists for TINK and RAW keys.
func validateEntries[P any](set *primitiveset.PrimitiveSet[P]) error {
	for _, e := range set.All() {
		if e.PrefixType != keyset.Tink && e.PrefixType != keyset.Raw {
			return fmt.Errorf("jwt: unsupported output prefix type %s", e.PrefixType)
		}
	}
	return nil
}

// interestingError keeps the first claim-validation failure seen while
// trying keys. A token rejected because it is expired should report that,
// not a generic verification failure, once some key authenticated it.
func interestingError(kept, err error) error {
	if kept == nil && errors.Is(err, ErrJWTInvalid) {
		return err
	}
	return kept
}

type wrappedMAC struct {
	set *primitiveset.PrimitiveSet[MACWithKID]
}

// NewMAC wraps a set of per-key JWT MACs into one MAC that computes with the
// primary key and verifies against every key of the set.
func NewMAC(set *primitiveset.PrimitiveSet[MACWithKID]) (MAC, error) {
	if set == nil {
		return nil, errNilSet
	}
	if set.Primary() == nil {
		return nil, ErrNoPrimary
	}
	if err := validateEntries(set); err != nil {
		return nil, err
	}
	return &wrappedMAC{set: set}, nil
}

func (w *wrappedMAC) ComputeMACAndEncode(token *RawJWT) (string, error) {
	primary := w.set.Primary()
	kid, err := KeyIDToKID(primary.KeyID, primary.PrefixType)
	if err != nil {
		return "", err
	}
	return primary.Primitive.ComputeMACAndEncodeWithKID(token, kid)
}

func (w *wrappedMAC) VerifyMACAndDecode(compact string, validator *Validator) (*VerifiedJWT, error) {
	var kept error
	for _, e := range w.set.All() {
		kid, err := KeyIDToKID(e.KeyID, e.PrefixType)
		if err != nil {
			continue
		}
		verified, err := e.Primitive.VerifyMACAndDecodeWithKID(compact, validator, kid)
		if err == nil {
			return verified, nil
		}
		kept = interestingError(kept, err)
	}
	if kept != nil {
		return nil, kept
	}
	return nil, ErrJWTVerificationFailed
}
