// Package jwtx issues and verifies the EdDSA-signed JWTs that carry a
// caller's identity and tenant between requests. Tokens are stateless:
// nothing about a session is persisted server-side.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. Access tokens are short-lived; refresh tokens let a
// client mint new access tokens without re-sending credentials.
const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token type values for the "typ" custom claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AMR (authentication method reference) values.
const (
	AMRPassword = "pwd"
	AMRTOTP     = "otp"
)

// Claims are the access-token claims shared across the service. The custom
// fields identify the caller and, critically, the tenant every downstream
// query must be scoped to.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType distinguishes access from refresh tokens so a refresh
	// token can never be replayed as an access token.
	TokenType string `json:"typ,omitempty"`

	// Email of the authenticated account.
	Email string `json:"email,omitempty"`

	// Username of the authenticated account.
	Username string `json:"username,omitempty"`

	// Role within the tenant ("member", "admin").
	Role string `json:"role,omitempty"`

	// CompanyID is the owning tenant. Every store lookup made on behalf
	// of this caller is filtered by it.
	CompanyID string `json:"company_id,omitempty"`

	// AMR records how the caller authenticated, e.g. ["pwd","otp"].
	AMR []string `json:"amr,omitempty"`
}

// NewClaims builds minimally-correct claims for an account token.
func NewClaims(
	tokenType, subject, email, username, role, companyID string,
	amr []string,
	issuer string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		TokenType: tokenType,
		Email:     email,
		Username:  username,
		Role:      role,
		CompanyID: companyID,
		AMR:       amr,
	}
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
