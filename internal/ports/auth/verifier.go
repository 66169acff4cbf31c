package auth

import "context"

// AuthVerifier verifica un bearer token y devuelve los claims del principal.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
