package jwt

import (
	"errors"
	"fmt"
	"time"
)

// maxClockSkew bounds how much clock drift a validator may forgive.
const maxClockSkew = 10 * time.Minute

// ValidatorOpts configures token validation. For the type header, issuer and
// audience the default is strict: a token carrying the claim fails unless an
// expectation or the matching Ignore flag is set, so a claim can never slip
// through unchecked.
type ValidatorOpts struct {
	ExpectedTypeHeader *string
	ExpectedIssuer     *string
	ExpectedAudience   *string

	IgnoreTypeHeader bool
	IgnoreIssuer     bool
	IgnoreAudiences  bool

	AllowMissingExpiration bool
	ExpectIssuedInThePast  bool

	ClockSkew time.Duration
	// FixedNow pins the validation clock, for tests. Zero means time.Now.
	FixedNow time.Time
}

// Validator checks the claims of an already-authenticated token.
type Validator struct {
	opts ValidatorOpts
}

// NewValidator validates opts and returns a Validator.
func NewValidator(opts *ValidatorOpts) (*Validator, error) {
	if opts == nil {
		return nil, errors.New("jwt: options must not be nil")
	}
	if opts.ExpectedTypeHeader != nil && opts.IgnoreTypeHeader {
		return nil, errors.New("jwt: ExpectedTypeHeader and IgnoreTypeHeader are mutually exclusive")
	}
	if opts.ExpectedIssuer != nil && opts.IgnoreIssuer {
		return nil, errors.New("jwt: ExpectedIssuer and IgnoreIssuer are mutually exclusive")
	}
	if opts.ExpectedAudience != nil && opts.IgnoreAudiences {
		return nil, errors.New("jwt: ExpectedAudience and IgnoreAudiences are mutually exclusive")
	}
	if opts.ClockSkew < 0 {
		return nil, errors.New("jwt: clock skew must not be negative")
	}
	if opts.ClockSkew > maxClockSkew {
		return nil, fmt.Errorf("jwt: clock skew must not exceed %v", maxClockSkew)
	}
	return &Validator{opts: *opts}, nil
}

// Validate checks the timestamps and the expected claims of token against
// this validator's options.
func (v *Validator) Validate(token *RawJWT) error {
	if token == nil {
		return errors.New("jwt: token must not be nil")
	}
	now := v.opts.FixedNow
	if now.IsZero() {
		now = time.Now()
	}
	skew := v.opts.ClockSkew

	if token.HasExpiration() {
		exp, err := token.ExpiresAt()
		if err != nil {
			return err
		}
		if !exp.After(now.Add(-skew)) {
			return ErrExpired
		}
	} else if !v.opts.AllowMissingExpiration {
		return fmt.Errorf("%w: token must have an expiration", ErrJWTInvalid)
	}

	if token.HasNotBefore() {
		nbf, err := token.NotBefore()
		if err != nil {
			return err
		}
		if nbf.After(now.Add(skew)) {
			return fmt.Errorf("%w: token is not yet valid", ErrJWTInvalid)
		}
	}

	if v.opts.ExpectIssuedInThePast {
		iat, err := token.IssuedAt()
		if err != nil {
			return fmt.Errorf("%w: token must have an iat claim", ErrJWTInvalid)
		}
		if iat.After(now.Add(skew)) {
			return fmt.Errorf("%w: token was issued in the future", ErrJWTInvalid)
		}
	}

	if err := v.validateTypeHeader(token); err != nil {
		return err
	}
	if err := v.validateIssuer(token); err != nil {
		return err
	}
	return v.validateAudiences(token)
}

func (v *Validator) validateTypeHeader(token *RawJWT) error {
	if v.opts.ExpectedTypeHeader != nil {
		typ, err := token.TypeHeader()
		if err != nil {
			return fmt.Errorf("%w: token has no type header", ErrJWTInvalid)
		}
		if typ != *v.opts.ExpectedTypeHeader {
			return fmt.Errorf("%w: wrong type header", ErrJWTInvalid)
		}
		return nil
	}
	if !v.opts.IgnoreTypeHeader && token.HasTypeHeader() {
		return fmt.Errorf("%w: token has an unexpected type header", ErrJWTInvalid)
	}
	return nil
}

func (v *Validator) validateIssuer(token *RawJWT) error {
	if v.opts.ExpectedIssuer != nil {
		iss, err := token.Issuer()
		if err != nil {
			return fmt.Errorf("%w: token has no issuer", ErrJWTInvalid)
		}
		if iss != *v.opts.ExpectedIssuer {
			return fmt.Errorf("%w: wrong issuer", ErrJWTInvalid)
		}
		return nil
	}
	if !v.opts.IgnoreIssuer && token.HasIssuer() {
		return fmt.Errorf("%w: token has an unexpected issuer", ErrJWTInvalid)
	}
	return nil
}

func (v *Validator) validateAudiences(token *RawJWT) error {
	if v.opts.ExpectedAudience != nil {
		auds, err := token.Audiences()
		if err != nil {
			return fmt.Errorf("%w: token has no audience", ErrJWTInvalid)
		}
		for _, aud := range auds {
			if aud == *v.opts.ExpectedAudience {
				return nil
			}
		}
		return fmt.Errorf("%w: audience not found", ErrJWTInvalid)
	}
	if !v.opts.IgnoreAudiences && token.HasAudiences() {
		return fmt.Errorf("%w: token has an unexpected audience", ErrJWTInvalid)
	}
	return nil
}
