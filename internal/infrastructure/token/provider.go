package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rentpal/rentpal-api/internal/config"
	"github.com/rentpal/rentpal-api/internal/domain"
)

// Provider signs and verifies compact bearer tokens with a symmetric secret.
// Tokens are self-contained: subject = user email, exp = absolute expiry.
// There is no revocation list; a token stays valid until it expires.
type Provider struct {
	secret []byte
	method jwt.SigningMethod
	expiry time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	var method jwt.SigningMethod
	switch cfg.JWTAlgorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm %q", cfg.JWTAlgorithm)
	}
	return &Provider{
		secret: []byte(cfg.JWTSecret),
		method: method,
		expiry: time.Duration(cfg.AccessExpiryMins) * time.Minute,
	}, nil
}

// Expiry is the configured default token lifetime.
func (p *Provider) Expiry() time.Duration { return p.expiry }

// Issue signs a token for the subject with the given lifetime. A
// non-positive ttl falls back to the configured default.
func (p *Provider) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = p.expiry
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(p.method, claims).SignedString(p.secret)
}

// Validate checks signature and expiry and returns the subject. Any failure
// (bad signature, expired, missing subject) maps to domain.ErrInvalidToken.
// A token whose exp equals the current instant counts as expired.
func (p *Provider) Validate(tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !time.Now().Before(claims.ExpiresAt.Time) {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
