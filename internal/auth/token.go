// Package auth mints and verifies the bearer tokens that identify the tenant
// and user behind every import request.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/zander/internal/core"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the JWT payload. The subject carries the user id.
type Claims struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens with a shared secret.
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewIssuer returns an Issuer. An empty issuer disables the iss check.
func NewIssuer(secret, issuer string) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Mint returns a signed token for actor valid for ttl.
func (i *Issuer) Mint(actor core.Actor, ttl time.Duration) (string, error) {
	if actor.TenantID == uuid.Nil {
		return "", fmt.Errorf("mint token: tenant id is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("mint token: ttl must be positive")
	}

	now := i.now()
	claims := Claims{
		TenantID: actor.TenantID.String(),
		Email:    actor.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString and returns the actor it names.
// Every failure wraps ErrInvalidToken.
func (i *Issuer) Parse(tokenString string) (core.Actor, error) {
	if tokenString == "" {
		return core.Actor{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return core.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	tenant, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return core.Actor{}, fmt.Errorf("%w: tenant_id claim: %v", ErrInvalidToken, err)
	}

	return core.Actor{TenantID: tenant, UserID: claims.Subject, Email: claims.Email}, nil
}
