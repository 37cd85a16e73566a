package jwt

import "time"

// VerifiedJWT is a token whose MAC or signature was checked and whose claims
// passed a Validator. It exposes the same read-only view as RawJWT.
type VerifiedJWT struct {
	token *RawJWT
}

func newVerifiedJWT(token *RawJWT) *VerifiedJWT {
	return &VerifiedJWT{token: token}
}

func (v *VerifiedJWT) JSONPayload() ([]byte, error) { return v.token.JSONPayload() }

func (v *VerifiedJWT) HasTypeHeader() bool { return v.token.HasTypeHeader() }

func (v *VerifiedJWT) TypeHeader() (string, error) { return v.token.TypeHeader() }

func (v *VerifiedJWT) HasIssuer() bool { return v.token.HasIssuer() }

func (v *VerifiedJWT) Issuer() (string, error) { return v.token.Issuer() }

func (v *VerifiedJWT) HasSubject() bool { return v.token.HasSubject() }

func (v *VerifiedJWT) Subject() (string, error) { return v.token.Subject() }

func (v *VerifiedJWT) HasJWTID() bool { return v.token.HasJWTID() }

func (v *VerifiedJWT) JWTID() (string, error) { return v.token.JWTID() }

func (v *VerifiedJWT) HasAudiences() bool { return v.token.HasAudiences() }

func (v *VerifiedJWT) Audiences() ([]string, error) { return v.token.Audiences() }

func (v *VerifiedJWT) HasExpiration() bool { return v.token.HasExpiration() }

func (v *VerifiedJWT) ExpiresAt() (time.Time, error) { return v.token.ExpiresAt() }

func (v *VerifiedJWT) HasNotBefore() bool { return v.token.HasNotBefore() }

func (v *VerifiedJWT) NotBefore() (time.Time, error) { return v.token.NotBefore() }

func (v *VerifiedJWT) HasIssuedAt() bool { return v.token.HasIssuedAt() }

func (v *VerifiedJWT) IssuedAt() (time.Time, error) { return v.token.IssuedAt() }

func (v *VerifiedJWT) HasStringClaim(name string) bool { return v.token.HasStringClaim(name) }

func (v *VerifiedJWT) StringClaim(name string) (string, error) { return v.token.StringClaim(name) }

func (v *VerifiedJWT) HasNumberClaim(name string) bool { return v.token.HasNumberClaim(name) }

func (v *VerifiedJWT) NumberClaim(name string) (float64, error) { return v.token.NumberClaim(name) }

func (v *VerifiedJWT) HasBooleanClaim(name string) bool { return v.token.HasBooleanClaim(name) }

func (v *VerifiedJWT) BooleanClaim(name string) (bool, error) { return v.token.BooleanClaim(name) }

func (v *VerifiedJWT) IsNullClaim(name string) bool { return v.token.IsNullClaim(name) }

func (v *VerifiedJWT) CustomClaimNames() []string { return v.token.CustomClaimNames() }
