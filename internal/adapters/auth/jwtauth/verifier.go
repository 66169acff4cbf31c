package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"virtual-pet/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretEmpty  = errors.New("jwt secret is empty")
	ErrMissingUser  = errors.New("jwt claims missing user id")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims acepta el user id en sub (Supabase/Flask) o en user_id.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier implementa auth.AuthVerifier con HS256 y secreto compartido.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewVerifier(secret, issuer string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretEmpty
	}
	return &Verifier{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		now:    time.Now,
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var c Claims
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	userID := strings.TrimSpace(c.Subject)
	if userID == "" {
		userID = strings.TrimSpace(c.UserID)
	}
	if userID == "" {
		return auth.Claims{}, ErrMissingUser
	}

	out := auth.Claims{
		UserID: userID,
		Email:  strings.TrimSpace(c.Email),
		Issuer: c.Issuer,
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}

// Sign emite un token HS256 para userID. Lo usan tests y herramientas de dev.
func Sign(secret, issuer, userID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", ErrSecretEmpty
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
