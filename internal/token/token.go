// Package token issues and validates the signed access tokens the backend
// hands out on register/login. Tokens are compact HS256 JWS strings; the
// signing key is derived from a base64-encoded pre-shared secret, decoded
// once at startup and held for the process lifetime. Rotating the secret
// invalidates every previously issued, unexpired token.
package token

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
)

// Claims is the payload of an issued token: registered sub/iat/exp plus the
// nickname and authority list of the subject.
type Claims struct {
	Nickname string   `json:"nickname"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

type Codec struct {
	key []byte
	ttl time.Duration
}

// NewCodec decodes the stored secret into HMAC key material.
func NewCodec(encodedSecret string, ttl time.Duration) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(encodedSecret)
	if err != nil {
		return nil, errors.New("signing secret is not valid base64")
	}
	if len(key) == 0 {
		return nil, errors.New("signing secret is empty")
	}
	return &Codec{key: key, ttl: ttl}, nil
}

// Issue signs a token for subject valid from now until now+ttl. Output is
// fully deterministic for identical inputs.
func (c *Codec) Issue(subject, nickname string, roles []string, now time.Time) (string, error) {
	claims := Claims{
		Nickname: nickname,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Parse verifies the three-part structure and the signature and returns the
// decoded claims. It does not check expiry; that comparison belongs to the
// caller.
func (c *Codec) Parse(tokenStr string) (*Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrMalformed
		}
		return nil, ErrInvalidSignature
	}
	return &claims, nil
}

// UnverifiedSubject decodes the subject claim without verifying the
// signature. Callers must only use the result to pick the record a full
// IsValid check runs against, never as an authenticated identity.
func (c *Codec) UnverifiedSubject(tokenStr string) (string, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}

// IsValid reports whether tokenStr carries a good signature, the expected
// subject, and an expiry strictly after now. Every decode or verify failure
// is swallowed into false: a tampered token and a missing one look the same.
func (c *Codec) IsValid(tokenStr, expectedSubject string, now time.Time) bool {
	claims, err := c.Parse(tokenStr)
	if err != nil {
		return false
	}
	if claims.Subject != expectedSubject {
		return false
	}
	return claims.ExpiresAt != nil && now.Before(claims.ExpiresAt.Time)
}
