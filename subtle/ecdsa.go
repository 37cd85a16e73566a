package subtle

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
)

// ECDSA signature encodings accepted by the signer and verifier.
const (
	EncodingDER       = "DER"
	EncodingIEEEP1363 = "IEEE_P1363"
)

var errECDSAVerification = errors.New("subtle: ECDSA verification failed")

// curveDigest hashes data with the hash matched to the curve's security
// level: SHA-256 for P-256, SHA-384 for P-384, SHA-512 for P-521.
func curveDigest(curve elliptic.Curve, data []byte) ([]byte, error) {
	switch curve {
	case elliptic.P256():
		d := sha256.Sum256(data)
		return d[:], nil
	case elliptic.P384():
		d := sha512.Sum384(data)
		return d[:], nil
	case elliptic.P521():
		d := sha512.Sum512(data)
		return d[:], nil
	default:
		return nil, fmt.Errorf("subtle: unsupported curve %v", curve)
	}
}

// fieldSizeInBytes is 32, 48 or 66 for P-256, P-384 and P-521.
func fieldSizeInBytes(curve elliptic.Curve) int {
	return (curve.Params().BitSize + 7) / 8
}

func validateEncoding(encoding string) error {
	if encoding != EncodingDER && encoding != EncodingIEEEP1363 {
		return fmt.Errorf("subtle: unsupported ECDSA encoding %q", encoding)
	}
	return nil
}

// ECDSASigner signs with a NIST-curve private key and emits signatures in
// the chosen encoding. It implements tink.Signer.
type ECDSASigner struct {
	priv     *ecdsa.PrivateKey
	encoding string
}

func NewECDSASigner(priv *ecdsa.PrivateKey, encoding string) (*ECDSASigner, error) {
	if priv == nil {
		return nil, errors.New("subtle: private key must not be nil")
	}
	if err := validateEncoding(encoding); err != nil {
		return nil, err
	}
	if _, err := curveDigest(priv.Curve, nil); err != nil {
		return nil, err
	}
	return &ECDSASigner{priv: priv, encoding: encoding}, nil
}

func (s *ECDSASigner) Sign(data []byte) ([]byte, error) {
	digest, err := curveDigest(s.priv.Curve, data)
	if err != nil {
		return nil, err
	}
	der, err := ecdsa.SignASN1(rand.Reader, s.priv, digest)
	if err != nil {
		return nil, err
	}
	if s.encoding == EncodingDER {
		return der, nil
	}
	return DERToIEEEP1363(der, 2*fieldSizeInBytes(s.priv.Curve))
}

// ECDSAVerifier checks signatures produced by ECDSASigner. It implements
// tink.Verifier.
type ECDSAVerifier struct {
	pub      *ecdsa.PublicKey
	encoding string
}

func NewECDSAVerifier(pub *ecdsa.PublicKey, encoding string) (*ECDSAVerifier, error) {
	if pub == nil {
		return nil, errors.New("subtle: public key must not be nil")
	}
	if err := validateEncoding(encoding); err != nil {
		return nil, err
	}
	if _, err := curveDigest(pub.Curve, nil); err != nil {
		return nil, err
	}
	return &ECDSAVerifier{pub: pub, encoding: encoding}, nil
}

func (v *ECDSAVerifier) Verify(signature, data []byte) error {
	der := signature
	switch v.encoding {
	case EncodingDER:
		// Strict DER only: accepting BER variants would let one signature
		// have many encodings.
		if !IsValidDEREncoding(der) {
			return errECDSAVerification
		}
	case EncodingIEEEP1363:
		if len(signature) != 2*fieldSizeInBytes(v.pub.Curve) {
			return errECDSAVerification
		}
		var err error
		der, err = IEEEP1363ToDER(signature)
		if err != nil {
			return errECDSAVerification
		}
	}
	digest, err := curveDigest(v.pub.Curve, data)
	if err != nil {
		return errECDSAVerification
	}
	if !ecdsa.VerifyASN1(v.pub, digest, der) {
		return errECDSAVerification
	}
	return nil
}
