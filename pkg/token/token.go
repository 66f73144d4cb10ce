// Package token issues and verifies the signed credentials used by the API:
// long-lived session tokens and short-lived single-purpose tokens (email
// confirmation, password reset). Tokens are stateless HS256 JWTs; nothing is
// stored server side and revocation before natural expiry is not supported.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Purpose scopes a short-lived token to a single use. Each purpose signs with
// its own derived key, so a token issued for one purpose never verifies under
// another.
type Purpose string

const (
	PurposeConfirmEmail  Purpose = "confirm-email"
	PurposeResetPassword Purpose = "reset-password"
)

var (
	// ErrExpired reports a token whose validity window has passed.
	ErrExpired = errors.New("token: expired")
	// ErrInvalid reports a malformed token or a signature mismatch.
	ErrInvalid = errors.New("token: invalid")
)

const issuer = "serenity"

// Codec signs and verifies tokens with a shared secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option customizes a Codec.
type Option func(*Codec)

// WithClock overrides the codec's time source.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec returns a Codec signing with the given secret.
func NewCodec(secret string, opts ...Option) *Codec {
	c := &Codec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type claims struct {
	jwtlib.RegisteredClaims
}

// IssueSession produces a session token for the given user id, expiring
// after ttl.
func (c *Codec) IssueSession(userID string, ttl time.Duration) (string, error) {
	now := c.now()
	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	})
	return t.SignedString(c.secret)
}

// VerifySession validates a session token and returns the user id it was
// issued for.
func (c *Codec) VerifySession(token string) (string, error) {
	return c.verify(token, c.secret, 0)
}

// IssuePurpose signs an arbitrary subject (a user id at registration, a raw
// email for password reset) for a single purpose. The token carries only its
// issuance time; the validity window is decided at verification.
func (c *Codec) IssuePurpose(purpose Purpose, subject string) (string, error) {
	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:   issuer,
			Subject:  subject,
			IssuedAt: jwtlib.NewNumericDate(c.now()),
		},
	})
	return t.SignedString(c.purposeKey(purpose))
}

// VerifyPurpose validates a purpose token no older than maxAge and returns
// its subject.
func (c *Codec) VerifyPurpose(purpose Purpose, token string, maxAge time.Duration) (string, error) {
	return c.verify(token, c.purposeKey(purpose), maxAge)
}

func (c *Codec) verify(token string, key []byte, maxAge time.Duration) (string, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return key, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	cl, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return "", ErrInvalid
	}
	if maxAge > 0 {
		if cl.IssuedAt == nil {
			return "", ErrInvalid
		}
		if c.now().After(cl.IssuedAt.Add(maxAge)) {
			return "", ErrExpired
		}
	}
	return cl.Subject, nil
}

// purposeKey derives a per-purpose signing key so confirmation and reset
// tokens are not interchangeable.
func (c *Codec) purposeKey(purpose Purpose) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(purpose))
	return mac.Sum(nil)
}
