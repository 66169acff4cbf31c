package auth

import "time"

// Claims es la identidad del caller tal como la entrega el verificador.
type Claims struct {
	UserID string
	Email  string

	// Issuer/ExpiresAt son opcionales (modo dev no los completa).
	Issuer    string
	ExpiresAt time.Time
}
