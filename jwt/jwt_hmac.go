package jwt

import (
	"fmt"

	"github.com/pablobaxter/tink/subtle"
)

// MAC computes and verifies JWTs in compact serialization, authenticated
// with a symmetric key.
type MAC interface {
	// ComputeMACAndEncode returns the compact serialization of token with
	// its MAC appended.
	ComputeMACAndEncode(token *RawJWT) (string, error)
	// VerifyMACAndDecode checks the MAC of a compact token, then validates
	// its claims.
	VerifyMACAndDecode(compact string, validator *Validator) (*VerifiedJWT, error)
}

// MACWithKID is the per-key form of MAC used by the keyset wrapper: the
// wrapper passes the kid derived from the key id, nil for RAW keys.
type MACWithKID interface {
	ComputeMACAndEncodeWithKID(token *RawJWT, kid *string) (string, error)
	VerifyMACAndDecodeWithKID(compact string, validator *Validator, kid *string) (*VerifiedJWT, error)
}

var hmacParams = map[string]struct {
	hash       string
	minKeySize int
	tagSize    int
}{
	"HS256": {"SHA256", 32, 32},
	"HS384": {"SHA384", 48, 48},
	"HS512": {"SHA512", 64, 64},
}

// HMAC implements MAC and MACWithKID for the HS256/HS384/HS512 algorithms.
type HMAC struct {
	algorithm string
	mac       *subtle.HMAC
	customKID *string
}

// NewHMAC returns an HMAC for algorithm HS256, HS384 or HS512. customKID, if
// set, is written into the header of every token; it is only legal for keys
// without a Tink-derived kid, i.e. RAW keys.
func NewHMAC(algorithm string, key []byte, customKID *string) (*HMAC, error) {
	params, ok := hmacParams[algorithm]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrInvalidAlgorithm, algorithm)
	}
	if len(key) < params.minKeySize {
		return nil, fmt.Errorf("jwt: %s key must have at least %d bytes", algorithm, params.minKeySize)
	}
	mac, err := subtle.NewHMAC(params.hash, key, params.tagSize)
	if err != nil {
		return nil, err
	}
	return &HMAC{algorithm: algorithm, mac: mac, customKID: customKID}, nil
}

func (h *HMAC) ComputeMACAndEncode(token *RawJWT) (string, error) {
	return h.ComputeMACAndEncodeWithKID(token, nil)
}

func (h *HMAC) ComputeMACAndEncodeWithKID(token *RawJWT, kid *string) (string, error) {
	if h.customKID != nil && kid != nil {
		return "", fmt.Errorf("%w: custom kid is only allowed for RAW keys", ErrJWTInvalid)
	}
	unsigned, err := createUnsignedCompact(token, h.algorithm, kid, h.customKID)
	if err != nil {
		return "", err
	}
	tag, err := h.mac.ComputeMAC([]byte(unsigned))
	if err != nil {
		return "", err
	}
	return combineUnsignedAndSignature(unsigned, tag), nil
}

func (h *HMAC) VerifyMACAndDecode(compact string, validator *Validator) (*VerifiedJWT, error) {
	return h.VerifyMACAndDecodeWithKID(compact, validator, nil)
}

func (h *HMAC) VerifyMACAndDecodeWithKID(compact string, validator *Validator, kid *string) (*VerifiedJWT, error) {
	parts, err := splitSignedCompact(compact)
	if err != nil {
		return nil, err
	}
	// The MAC comes first: header and payload are attacker-controlled until
	// it checks out.
	if err := h.mac.VerifyMAC(parts.signature, []byte(parts.unsigned)); err != nil {
		return nil, err
	}
	hdr, err := unmarshalJSONObject(parts.header)
	if err != nil {
		return nil, err
	}
	if err := validateHeader(hdr, h.algorithm, kid, h.customKID); err != nil {
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
