package jwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"

	"github.com/pablobaxter/tink/subtle"
)

// Signer produces signed JWTs in compact serialization.
type Signer interface {
	SignAndEncode(token *RawJWT) (string, error)
}

// Verifier checks the signature of a compact token and validates its claims.
type Verifier interface {
	VerifyAndDecode(compact string, validator *Validator) (*VerifiedJWT, error)
}

// SignerWithKID and VerifierWithKID are the per-key forms used by the keyset
// wrappers; the wrapper passes the kid derived from the key id, nil for RAW
// keys.
type SignerWithKID interface {
	SignAndEncodeWithKID(token *RawJWT, kid *string) (string, error)
}

type VerifierWithKID interface {
	VerifyAndDecodeWithKID(compact string, validator *Validator, kid *string) (*VerifiedJWT, error)
}

var ecdsaCurves = map[string]elliptic.Curve{
	"ES256": elliptic.P256(),
	"ES384": elliptic.P384(),
	"ES512": elliptic.P521(),
}

// JWS ECDSA signatures are fixed-width r||s, never DER.
func ecdsaAlgorithmForKey(algorithm string, curve elliptic.Curve) error {
	want, ok := ecdsaCurves[algorithm]
	if !ok {
		return fmt.Errorf("%w %q", ErrInvalidAlgorithm, algorithm)
	}
	if curve != want {
		return fmt.Errorf("jwt: %s requires curve %s, key uses %s", algorithm, want.Params().Name, curve.Params().Name)
	}
	return nil
}

// ECDSASigner implements Signer and SignerWithKID for ES256/ES384/ES512.
type ECDSASigner struct {
	algorithm string
	signer    *subtle.ECDSASigner
	customKID *string
}

func NewECDSASigner(algorithm string, priv *ecdsa.PrivateKey, customKID *string) (*ECDSASigner, error) {
	if priv == nil {
		return nil, fmt.Errorf("jwt: private key must not be nil")
	}
	if err := ecdsaAlgorithmForKey(algorithm, priv.Curve); err != nil {
		return nil, err
	}
	signer, err := subtle.NewECDSASigner(priv, subtle.EncodingIEEEP1363)
	if err != nil {
		return nil, err
	}
	return &ECDSASigner{algorithm: algorithm, signer: signer, customKID: customKID}, nil
}

func (s *ECDSASigner) SignAndEncode(token *RawJWT) (string, error) {
	return s.SignAndEncodeWithKID(token, nil)
}

func (s *ECDSASigner) SignAndEncodeWithKID(token *RawJWT, kid *string) (string, error) {
	if s.customKID != nil && kid != nil {
		return "", fmt.Errorf("%w: custom kid is only allowed for RAW keys", ErrJWTInvalid)
	}
	unsigned, err := createUnsignedCompact(token, s.algorithm, kid, s.customKID)
	if err != nil {
		return "", err
	}
	sig, err := s.signer.Sign([]byte(unsigned))
	if err != nil {
		return "", err
	}
	return combineUnsignedAndSignature(unsigned, sig), nil
}

// ECDSAVerifier implements Verifier and VerifierWithKID for ES256/ES384/ES512.
type ECDSAVerifier struct {
	algorithm string
	verifier  *subtle.ECDSAVerifier
	customKID *string
}

func NewECDSAVerifier(algorithm string, pub *ecdsa.PublicKey, customKID *string) (*ECDSAVerifier, error) {
	if pub == nil {
		return nil, fmt.Errorf("jwt: public key must not be nil")
	}
	if err := ecdsaAlgorithmForKey(algorithm, pub.Curve); err != nil {
		return nil, err
	}
	verifier, err := subtle.NewECDSAVerifier(pub, subtle.EncodingIEEEP1363)
	if err != nil {
		return nil, err
	}
	return &ECDSAVerifier{algorithm: algorithm, verifier: verifier, customKID: customKID}, nil
}

func (v *ECDSAVerifier) VerifyAndDecode(compact string, validator *Validator) (*VerifiedJWT, error) {
	return v.VerifyAndDecodeWithKID(compact, validator, nil)
}

func (v *ECDSAVerifier) VerifyAndDecodeWithKID(compact string, validator *Validator, kid *string) (*VerifiedJWT, error) {
	parts, err := splitSignedCompact(compact)
	if err != nil {
		return nil, err
	}
	if err := v.verifier.Verify(parts.signature, []byte(parts.unsigned)); err != nil {
		return nil, err
	}
	hdr, err := unmarshalJSONObject(parts.header)
	if err != nil {
		return nil, err
	}
	if err := validateHeader(hdr, v.algorithm, kid, v.customKID); err != nil {
		return nil, err
	}
	typeHeader, err := typeHeaderOf(hdr)
	if err != nil {
		return nil, err
	}
	token, err := newRawJWTFromJSON(typeHeader, parts.payload)
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(token); err != nil {
		return nil, err
	}
	return newVerifiedJWT(token), nil
}
