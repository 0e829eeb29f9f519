package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
)

// Claims are the actor claims carried by an access token. The subject is the
// actor id.
type Claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access tokens
type Tokens struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokens creates a token signer/verifier. An empty secret disables token auth.
func NewTokens(secret, issuer string) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// Enabled reports whether a signing secret is configured
func (t *Tokens) Enabled() bool {
	return len(t.secret) > 0
}

// Issue signs a token for actor valid for ttl
func (t *Tokens) Issue(actor domain.Actor, ttl time.Duration) (string, error) {
	if !t.Enabled() {
		return "", errors.New("token signing secret is not configured")
	}
	now := t.now()
	claims := Claims{
		Name: actor.Name,
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses a token and returns the actor it names
func (t *Tokens) Verify(tokenString string) (*domain.Actor, error) {
	if !t.Enabled() {
		return nil, errors.New("token signing secret is not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", err)
	}

	return &domain.Actor{ID: id, Name: claims.Name, Role: claims.Role}, nil
}
