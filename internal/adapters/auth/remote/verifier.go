// Package remote verifica tokens contra un servicio de identidad externo por HTTP.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"virtual-pet/internal/platform/apperr"
	"virtual-pet/internal/platform/httpclient"
	"virtual-pet/internal/ports/auth"
)

const (
	verifyPath          = "/v1/tokens/verify"
	DefaultAPIKeyHeader = "X-Api-Key"
)

var (
	ErrNotConfigured = errors.New("remote auth not configured")
	ErrRejected      = errors.New("token rejected by identity service")
	ErrTokenEmpty    = errors.New("token is empty")
)

type Config struct {
	BaseURL string
	APIKey  string

	// Vacío => X-Api-Key.
	APIKeyHeader string
	Timeout      time.Duration

	// Solo tests.
	Transport http.RoundTripper
}

// Verifier implementa auth.AuthVerifier llamando al servicio de identidad.
type Verifier struct {
	client *httpclient.Client
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = DefaultAPIKeyHeader
	}

	c, err := httpclient.New(httpclient.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		Transport: cfg.Transport,
		Headers:   map[string]string{header: strings.TrimSpace(cfg.APIKey)},
	})
	if err != nil {
		return nil, err
	}
	return &Verifier{client: c}, nil
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Issuer    string    `json:"issuer"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var out verifyResponse
	err := v.client.DoJSON(ctx, http.MethodPost, verifyPath,
		map[string]string{"Authorization": "Bearer " + token},
		verifyRequest{Token: token}, &out)
	if err != nil {
		switch httpclient.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return auth.Claims{}, ErrRejected
		default:
			return auth.Claims{}, apperr.Transient(fmt.Errorf("remote verify: %w", err))
		}
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrRejected)
	}

	return auth.Claims{
		UserID:    out.UserID,
		Email:     strings.TrimSpace(out.Email),
		Issuer:    out.Issuer,
		ExpiresAt: out.ExpiresAt,
	}, nil
}
