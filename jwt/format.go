// Package jwt provides JSON Web Token primitives and their keyset-aware
// wrappers: MAC-based tokens (HS256/384/512) and signature-based tokens
// (ES256/384/512), framed in the compact serialization with the key id
// bound into the kid header.
package jwt

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pablobaxter/tink/keyset"
)

var (
	// ErrJWTInvalid is the base error for structurally or semantically
	// invalid tokens. Specific failures wrap it.
	ErrJWTInvalid = errors.New("jwt: invalid token")
	// ErrExpired is returned by validation of a token whose exp claim is in
	// the past. It wraps ErrJWTInvalid.
	ErrExpired = fmt.Errorf("%w: token has expired", ErrJWTInvalid)
	// ErrInvalidAlgorithm is returned when a header's alg does not match the
	// verifying key's algorithm.
	ErrInvalidAlgorithm = errors.New("jwt: invalid algorithm")
)

var supportedAlgorithms = map[string]bool{
	"HS256": true, "HS384": true, "HS512": true,
	"ES256": true, "ES384": true, "ES512": true,
	"RS256": true, "RS384": true, "RS512": true,
	"PS256": true, "PS384": true, "PS512": true,
}

func validateAlgorithm(algorithm string) error {
	if !supportedAlgorithms[algorithm] {
		return fmt.Errorf("%w %q", ErrInvalidAlgorithm, algorithm)
	}
	return nil
}

func isBase64URLChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}

func base64Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// base64Decode decodes an unpadded base64url segment. Every byte is checked
// against the alphabet first because Go's decoder silently skips \r and \n.
func base64Decode(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if !isBase64URLChar(s[i]) {
			return nil, fmt.Errorf("%w: invalid base64url character %q", ErrJWTInvalid, s[i])
		}
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWTInvalid, err)
	}
	return b, nil
}

// KeyIDToKID maps a key id to the kid header value its tokens must carry.
// Only TINK keys bind the key id into the header; RAW keys carry no kid at
// all, and LEGACY/CRUNCHY keys cannot be used for JWTs.
func KeyIDToKID(keyID uint32, prefixType keyset.PrefixType) (*string, error) {
	switch prefixType {
	case keyset.Raw:
		return nil, nil
	case keyset.Tink:
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], keyID)
		kid := base64Encode(buf[:])
		return &kid, nil
	default:
		return nil, fmt.Errorf("%w: output prefix type %s cannot derive a kid", ErrJWTInvalid, prefixType)
	}
}

// KeyIDFromKID inverts KeyIDToKID. A malformed kid yields nil rather than an
// error so probing kids cannot distinguish "unknown key" from "bad encoding".
func KeyIDFromKID(kid string) *uint32 {
	b, err := base64Decode(kid)
	if err != nil || len(b) != 4 {
		return nil
	}
	id := binary.BigEndian.Uint32(b)
	return &id
}

// header field order on the wire is kid, alg, typ.
type header struct {
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg"`
	Typ string `json:"typ,omitempty"`
}

func createHeader(algorithm string, kid, typeHeader *string) (string, error) {
	if err := validateAlgorithm(algorithm); err != nil {
		return "", err
	}
	h := header{Alg: algorithm}
	if kid != nil {
		h.Kid = *kid
	}
	if typeHeader != nil {
		h.Typ = *typeHeader
	}
	b, err := json.Marshal(h)
	if err != nil {
		return "", err
	}
	return base64Encode(b), nil
}

// unmarshalJSONObject parses a JSON object, rejecting invalid UTF-8 that
// encoding/json would otherwise replace with U+FFFD.
func unmarshalJSONObject(b []byte) (map[string]any, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrJWTInvalid)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWTInvalid, err)
	}
	return m, nil
}

// validateHeader checks a parsed header against the verifying key: the alg
// must match exactly, crit is never accepted, and the kid must agree with
// whichever single source the key prescribes. tinkKID (derived from the key
// id) must appear verbatim; customKID may be asserted in the header but does
// not have to be.
func validateHeader(hdr map[string]any, algorithm string, tinkKID, customKID *string) error {
	alg, ok := hdr["alg"].(string)
	if !ok || alg != algorithm {
		return fmt.Errorf("%w: got %v, want %s", ErrInvalidAlgorithm, hdr["alg"], algorithm)
	}
	if _, ok := hdr["crit"]; ok {
		return fmt.Errorf("%w: crit header is not supported", ErrJWTInvalid)
	}
	if tinkKID != nil && customKID != nil {
		return fmt.Errorf("%w: custom kid is not allowed with a kid-bound key", ErrJWTInvalid)
	}
	kid, hasKID := hdr["kid"].(string)
	if tinkKID != nil {
		if !hasKID || kid != *tinkKID {
			return fmt.Errorf("%w: kid header does not match the key id", ErrJWTInvalid)
		}
	}
	if customKID != nil && hasKID && kid != *customKID {
		return fmt.Errorf("%w: kid header does not match the custom kid", ErrJWTInvalid)
	}
	return nil
}

func typeHeaderOf(hdr map[string]any) (*string, error) {
	v, ok := hdr["typ"]
	if !ok {
		return nil, nil
	}
	typ, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: typ header must be a string", ErrJWTInvalid)
	}
	return &typ, nil
}

// compactParts is the decomposition of a signed compact token.
type compactParts struct {
	unsigned  string
	header    []byte
	payload   []byte
	signature []byte
}

// splitSignedCompact splits header.payload.signature and decodes the three
// segments. The whole string must stay inside the base64url alphabet plus
// the two dots; ".." is the valid degenerate empty token.
func splitSignedCompact(compact string) (*compactParts, error) {
	for i := 0; i < len(compact); i++ {
		if c := compact[i]; c != '.' && !isBase64URLChar(c) {
			return nil, fmt.Errorf("%w: invalid character %q in compact serialization", ErrJWTInvalid, c)
		}
	}
	segments := strings.Split(compact, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("%w: compact serialization must have 3 segments, got %d", ErrJWTInvalid, len(segments))
	}
	hdr, err := base64Decode(segments[0])
	if err != nil {
		return nil, err
	}
	payload, err := base64Decode(segments[1])
	if err != nil {
		return nil, err
	}
	sig, err := base64Decode(segments[2])
	if err != nil {
		return nil, err
	}
	return &compactParts{
		unsigned:  segments[0] + "." + segments[1],
		header:    hdr,
		payload:   payload,
		signature: sig,
	}, nil
}

// createUnsignedCompact builds header.payload for token. Exactly one of
// tinkKID and customKID may be set; supplying both is rejected because a
// token must have a single authoritative kid source.
func createUnsignedCompact(token *RawJWT, algorithm string, tinkKID, customKID *string) (string, error) {
	kid := tinkKID
	if customKID != nil {
		if tinkKID != nil {
			return "", fmt.Errorf("%w: custom kid is not allowed with a kid-bound key", ErrJWTInvalid)
		}
		kid = customKID
	}
	hdr, err := createHeader(algorithm, kid, token.typeHeader)
	if err != nil {
		return "", err
	}
	payload, err := token.JSONPayload()
	if err != nil {
		return "", err
	}
	return hdr + "." + base64Encode(payload), nil
}

func combineUnsignedAndSignature(unsigned string, signature []byte) string {
	return unsigned + "." + base64Encode(signature)
}
