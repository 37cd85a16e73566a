package jwt

import (
	"github.com/pablobaxter/tink/primitiveset"
)

type wrappedSigner struct {
	set *primitiveset.PrimitiveSet[SignerWithKID]
}

// NewSigner wraps a set of per-key JWT signers into one Signer that signs
// with the primary key.
func NewSigner(set *primitiveset.PrimitiveSet[SignerWithKID]) (Signer, error) {
	if set == nil {
		return nil, errNilSet
	}
	if set.Primary() == nil {
		return nil, ErrNoPrimary
	}
	if err := validateEntries(set); err != nil {
		return nil, err
	}
	return &wrappedSigner{set: set}, nil
}

func (w *wrappedSigner) SignAndEncode(token *RawJWT) (string, error) {
	primary := w.set.Primary()
	kid, err := KeyIDToKID(primary.KeyID, primary.PrefixType)
	if err != nil {
		return "", err
	}
	return primary.Primitive.SignAndEncodeWithKID(token, kid)
}

type wrappedVerifier struct {
	set *primitiveset.PrimitiveSet[VerifierWithKID]
}

// NewVerifier wraps a set of per-key JWT verifiers into one Verifier that
// tries every key of the set. A verify-only set does not need a primary.
func NewVerifier(set *primitiveset.PrimitiveSet[VerifierWithKID]) (Verifier, error) {
	if set == nil {
		return nil, errNilSet
	}
	if err := validateEntries(set); err != nil {
		return nil, err
	}
	return &wrappedVerifier{set: set}, nil
}

func (w *wrappedVerifier) VerifyAndDecode(compact string, validator *Validator) (*VerifiedJWT, error) {
	var kept error
	for _, e := range w.set.All() {
		kid, err := KeyIDToKID(e.KeyID, e.PrefixType)
		if err != nil {
			continue
		}
		verified, err := e.Primitive.VerifyAndDecodeWithKID(compact, validator, kid)
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
