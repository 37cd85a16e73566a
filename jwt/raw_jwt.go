package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Registered claim names are managed through RawJWTOptions fields, never
// through CustomClaims.
var registeredClaims = map[string]bool{
	"iss": true, "sub": true, "aud": true,
	"exp": true, "nbf": true, "iat": true, "jti": true,
}

// maxTimestampSeconds is 9999-12-31T23:59:59Z, the largest second value a
// NumericDate claim may hold.
const maxTimestampSeconds = 253402300799

var errNoClaim = errors.New("jwt: claim is not present")

// RawJWTOptions holds the claims and the type header of a token to be
// created. At most one of Audience and Audiences may be set. Exactly one of
// ExpiresAt and WithoutExpiration must be set: tokens without an expiry must
// say so explicitly.
type RawJWTOptions struct {
	Audiences         []string
	Audience          *string
	Subject           *string
	Issuer            *string
	JWTID             *string
	IssuedAt          *time.Time
	ExpiresAt         *time.Time
	NotBefore         *time.Time
	WithoutExpiration bool
	TypeHeader        *string
	CustomClaims      map[string]any
}

// RawJWT is an unverified token: a set of claims plus an optional type
// header. It is immutable once created.
type RawJWT struct {
	payload    map[string]any
	typeHeader *string
}

// NewRawJWT validates opts and returns the token they describe.
func NewRawJWT(opts *RawJWTOptions) (*RawJWT, error) {
	if opts == nil {
		return nil, errors.New("jwt: options must not be nil")
	}
	payload, err := createPayload(opts)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}
	return &RawJWT{payload: payload, typeHeader: opts.TypeHeader}, nil
}

// newRawJWTFromJSON builds a token from the decoded payload of a compact
// serialization, after the MAC or signature already checked out.
func newRawJWTFromJSON(typeHeader *string, payloadJSON []byte) (*RawJWT, error) {
	payload, err := unmarshalJSONObject(payloadJSON)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}
	return &RawJWT{payload: payload, typeHeader: typeHeader}, nil
}

func createPayload(opts *RawJWTOptions) (map[string]any, error) {
	if opts.ExpiresAt == nil && !opts.WithoutExpiration {
		return nil, fmt.Errorf("%w: an expiration or WithoutExpiration must be set", ErrJWTInvalid)
	}
	if opts.ExpiresAt != nil && opts.WithoutExpiration {
		return nil, fmt.Errorf("%w: ExpiresAt and WithoutExpiration are mutually exclusive", ErrJWTInvalid)
	}
	if opts.Audience != nil && opts.Audiences != nil {
		return nil, fmt.Errorf("%w: Audience and Audiences are mutually exclusive", ErrJWTInvalid)
	}
	payload := make(map[string]any)
	setString := func(name string, v *string) {
		if v != nil {
			payload[name] = *v
		}
	}
	setString("iss", opts.Issuer)
	setString("sub", opts.Subject)
	setString("jti", opts.JWTID)
	if opts.Audience != nil {
		payload["aud"] = *opts.Audience
	}
	if opts.Audiences != nil {
		auds := make([]any, len(opts.Audiences))
		for i, a := range opts.Audiences {
			auds[i] = a
		}
		payload["aud"] = auds
	}
	setTime := func(name string, t *time.Time) {
		if t != nil {
			payload[name] = float64(t.Unix())
		}
	}
	setTime("exp", opts.ExpiresAt)
	setTime("nbf", opts.NotBefore)
	setTime("iat", opts.IssuedAt)
	for name, value := range opts.CustomClaims {
		if registeredClaims[name] {
			return nil, fmt.Errorf("%w: claim %q must be set through its options field", ErrJWTInvalid, name)
		}
		payload[name] = value
	}
	return payload, nil
}

// validatePayload type-checks every registered claim. It runs both on newly
// constructed tokens and on decoded ones, so a malformed payload fails the
// same way regardless of where it came from.
func validatePayload(payload map[string]any) error {
	for _, name := range []string{"iss", "sub", "jti"} {
		if v, ok := payload[name]; ok {
			if _, ok := v.(string); !ok {
				return fmt.Errorf("%w: claim %q must be a string", ErrJWTInvalid, name)
			}
		}
	}
	for _, name := range []string{"exp", "nbf", "iat"} {
		v, ok := payload[name]
		if !ok {
			continue
		}
		ts, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%w: claim %q must be a number", ErrJWTInvalid, name)
		}
		if ts < 0 || ts > maxTimestampSeconds {
			return fmt.Errorf("%w: claim %q is out of range", ErrJWTInvalid, name)
		}
	}
	if aud, ok := payload["aud"]; ok {
		if err := validateAudienceClaim(aud); err != nil {
			return err
		}
	}
	return nil
}

// validateAudienceClaim accepts a bare string or a non-empty array of
// strings. The accessor always returns a list either way.
func validateAudienceClaim(aud any) error {
	switch v := aud.(type) {
	case string:
		return nil
	case []any:
		if len(v) == 0 {
			return fmt.Errorf("%w: aud must not be an empty list", ErrJWTInvalid)
		}
		for _, a := range v {
			if _, ok := a.(string); !ok {
				return fmt.Errorf("%w: every audience must be a string", ErrJWTInvalid)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: aud must be a string or a list of strings", ErrJWTInvalid)
	}
}

// JSONPayload serializes the claims.
func (r *RawJWT) JSONPayload() ([]byte, error) {
	return json.Marshal(r.payload)
}

func (r *RawJWT) HasTypeHeader() bool {
	return r.typeHeader != nil
}

func (r *RawJWT) TypeHeader() (string, error) {
	if r.typeHeader == nil {
		return "", fmt.Errorf("%w: type header", errNoClaim)
	}
	return *r.typeHeader, nil
}

func (r *RawJWT) HasIssuer() bool     { return r.hasClaim("iss") }
func (r *RawJWT) HasSubject() bool    { return r.hasClaim("sub") }
func (r *RawJWT) HasJWTID() bool      { return r.hasClaim("jti") }
func (r *RawJWT) HasAudiences() bool  { return r.hasClaim("aud") }
func (r *RawJWT) HasExpiration() bool { return r.hasClaim("exp") }
func (r *RawJWT) HasNotBefore() bool  { return r.hasClaim("nbf") }
func (r *RawJWT) HasIssuedAt() bool   { return r.hasClaim("iat") }

func (r *RawJWT) Issuer() (string, error)  { return r.stringClaim("iss") }
func (r *RawJWT) Subject() (string, error) { return r.stringClaim("sub") }
func (r *RawJWT) JWTID() (string, error)   { return r.stringClaim("jti") }

// Audiences returns the aud claim as a list, whether the token carried a
// bare string or an array.
func (r *RawJWT) Audiences() ([]string, error) {
	v, ok := r.payload["aud"]
	if !ok {
		return nil, fmt.Errorf("%w: aud", errNoClaim)
	}
	switch aud := v.(type) {
	case string:
		return []string{aud}, nil
	case []any:
		out := make([]string, len(aud))
		for i, a := range aud {
			s, ok := a.(string)
			if !ok {
				return nil, fmt.Errorf("%w: every audience must be a string", ErrJWTInvalid)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: aud must be a string or a list of strings", ErrJWTInvalid)
	}
}

func (r *RawJWT) ExpiresAt() (time.Time, error) { return r.timeClaim("exp") }
func (r *RawJWT) NotBefore() (time.Time, error) { return r.timeClaim("nbf") }
func (r *RawJWT) IssuedAt() (time.Time, error)  { return r.timeClaim("iat") }

func (r *RawJWT) HasStringClaim(name string) bool {
	_, ok := r.payload[name].(string)
	return ok && !registeredClaims[name]
}

func (r *RawJWT) StringClaim(name string) (string, error) {
	if registeredClaims[name] {
		return "", fmt.Errorf("%w: claim %q has a dedicated accessor", ErrJWTInvalid, name)
	}
	return r.stringClaim(name)
}

func (r *RawJWT) HasNumberClaim(name string) bool {
	_, ok := r.payload[name].(float64)
	return ok && !registeredClaims[name]
}

func (r *RawJWT) NumberClaim(name string) (float64, error) {
	if registeredClaims[name] {
		return 0, fmt.Errorf("%w: claim %q has a dedicated accessor", ErrJWTInvalid, name)
	}
	v, ok := r.payload[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", errNoClaim, name)
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: claim %q is not a number", ErrJWTInvalid, name)
	}
	return n, nil
}

func (r *RawJWT) HasBooleanClaim(name string) bool {
	_, ok := r.payload[name].(bool)
	return ok && !registeredClaims[name]
}

func (r *RawJWT) BooleanClaim(name string) (bool, error) {
	v, ok := r.payload[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", errNoClaim, name)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: claim %q is not a boolean", ErrJWTInvalid, name)
	}
	return b, nil
}

func (r *RawJWT) IsNullClaim(name string) bool {
	v, ok := r.payload[name]
	return ok && v == nil
}

// CustomClaimNames lists the non-registered claims, sorted.
func (r *RawJWT) CustomClaimNames() []string {
	var names []string
	for name := range r.payload {
		if !registeredClaims[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (r *RawJWT) hasClaim(name string) bool {
	_, ok := r.payload[name]
	return ok
}

func (r *RawJWT) stringClaim(name string) (string, error) {
	v, ok := r.payload[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", errNoClaim, name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: claim %q is not a string", ErrJWTInvalid, name)
	}
	return s, nil
}

func (r *RawJWT) timeClaim(name string) (time.Time, error) {
	v, ok := r.payload[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", errNoClaim, name)
	}
	ts, ok := v.(float64)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: claim %q is not a number", ErrJWTInvalid, name)
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)), nil
}
