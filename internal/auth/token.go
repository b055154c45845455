package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates what a token may be used for. Each verifier rejects
// tokens of any other kind, so a refresh token can never pass as a reset token
// or vice versa.
type TokenKind string

const (
	TokenKindAccess        TokenKind = "access"
	TokenKindRefresh       TokenKind = "refresh"
	TokenKindPasswordReset TokenKind = "password-reset"
)

var (
	// ErrInvalidSignature means the token was not signed with the active secret.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrExpiredToken means the signature checked out but the token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrMalformedToken covers everything that does not parse into valid claims.
	ErrMalformedToken = errors.New("malformed token")
	// ErrWrongTokenKind means a valid token was presented to a verifier of another kind.
	ErrWrongTokenKind = errors.New("wrong token kind")
)

// Claims describes the JWT payload.
type Claims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// UserID parses the subject into the identity store's id type.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrMalformedToken, c.Subject)
	}
	return id, nil
}

// TokenCodec signs claim sets with the process-wide secret and verifies them
// back. It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewTokenCodec builds a codec for the given secret and signing algorithm.
// Only HMAC algorithms are supported; the deployment holds a single symmetric
// key with no rotation.
func NewTokenCodec(secret, algorithm string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("signing secret must not be empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not symmetric", algorithm)
	}
	return &TokenCodec{secret: []byte(secret), method: method}, nil
}

// Encode signs claims for the subject with expiry now+ttl.
func (c *TokenCodec) Encode(subject int64, kind TokenKind, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subject, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(c.method, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies the signature and returns the claims. The signature is
// checked before the payload is interpreted; expiry and subject validity are
// checked after. Failures map to ErrInvalidSignature, ErrExpiredToken or
// ErrMalformedToken.
func (c *TokenCodec) Decode(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != c.method {
			return nil, ErrInvalidSignature
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrInvalidSignature):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformedToken
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrMalformedToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrMalformedToken)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}
