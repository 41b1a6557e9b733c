package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrNoToken       = errors.New("no token provided")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidIssuer = errors.New("invalid token issuer")
	ErrMissingSub    = errors.New("missing sub claim")
)

// TokenClaims is the identity extracted from a verified ID token. UID is
// the provider-assigned subject id.
type TokenClaims struct {
	UID    string
	Email  string
	Claims jwt.MapClaims
}

// Verifier validates provider-issued ID tokens locally: RS256 signature
// against the published keys, then issuer, audience and expiry.
type Verifier struct {
	issuer   string
	audience string
	keys     *keySet
}

// NewVerifier constructs a verifier for the given project.
func NewVerifier(projectID string) (*Verifier, error) {
	keys, err := newKeySet(securetokenJWKSURL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}
	return &Verifier{
		issuer:   "https://securetoken.google.com/" + projectID,
		audience: projectID,
		keys:     keys,
	}, nil
}

// Close stops background key refresh.
func (v *Verifier) Close() {
	v.keys.close()
}

// Verify checks a bearer token and returns its claims.
func (v *Verifier) Verify(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}
	tokenString = strings.TrimSpace(tokenString)

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidToken
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrInvalidToken
		}
		return v.keys.get(kid)
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if iss, _ := claims["iss"].(string); iss != v.issuer {
		return nil, ErrInvalidIssuer
	}
	if aud, _ := claims["aud"].(string); aud != v.audience {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(jwt.TimeFunc().Unix(), true) {
		return nil, ErrExpiredToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrMissingSub
	}
	email, _ := claims["email"].(string)

	return &TokenClaims{UID: sub, Email: email, Claims: claims}, nil
}
