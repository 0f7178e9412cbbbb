package jwtx

import (
	"crypto/ed25519"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrTokenType   = errors.New("jwtx: wrong token type")
)

// Signer signs claims into compact JWTs.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a JWT and returns the claims if it is legitimate.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// EdDSAKeys bundles an Ed25519 keypair into a Signer/Verifier pair.
type EdDSAKeys struct {
	priv   ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
}

// NewEdDSAKeys wraps an Ed25519 private key. The issuer is stamped into
// every signed token and enforced on verification.
func NewEdDSAKeys(priv ed25519.PrivateKey, issuer string) *EdDSAKeys {
	return &EdDSAKeys{
		priv:   priv,
		pub:    priv.Public().(ed25519.PublicKey),
		issuer: issuer,
	}
}

func (k *EdDSAKeys) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, c)
	return tok.SignedString(k.priv)
}

func (k *EdDSAKeys) Verify(raw string) (Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, ErrInvalidSig
		}
		return k.pub, nil
	})
	switch {
	case err == nil && tok.Valid:
		// fall through to issuer check
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return Claims{}, ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformed
	default:
		return Claims{}, ErrInvalidSig
	}

	if k.issuer != "" && claims.Issuer != k.issuer {
		return Claims{}, ErrIssuer
	}
	return claims, nil
}
