// Package auth issues and verifies session tokens and hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinSecretLength is the shortest accepted HMAC signing secret, in bytes.
	MinSecretLength = 32
	// DefaultTokenValidity is used when NewTokenIssuer gets a non-positive validity.
	DefaultTokenValidity = time.Hour
)

// Claims carries the user id as the only application claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// TokenIssuer signs and verifies HS256 session tokens. It holds no per-session
// state: a token is valid as long as its signature checks and it has not expired.
type TokenIssuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

type Option func(*TokenIssuer)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(i *TokenIssuer) {
		i.now = now
	}
}

func NewTokenIssuer(secret []byte, validity time.Duration, opts ...Option) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: jwt secret is not set", common.ErrConfiguration)
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: jwt secret must be at least %d bytes", common.ErrConfiguration, MinSecretLength)
	}
	if validity <= 0 {
		validity = DefaultTokenValidity
	}

	i := &TokenIssuer{
		secret:   append([]byte(nil), secret...),
		validity: validity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Validity reports how long issued tokens stay valid.
func (i *TokenIssuer) Validity() time.Duration {
	return i.validity
}

// Issue returns a signed token for userID expiring after the configured validity.
func (i *TokenIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}

	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		UserID: userID,
	})

	return token.SignedString(i.secret)
}

// Verify checks signature, algorithm and expiry and returns the user id.
// Expired tokens yield common.ErrTokenExpired, everything else
// common.ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
