//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../../mocks/mock_interactions_store.go -package=mocks
package interactions

import (
	"context"

	"virtual-pet/internal/domain/pets"
)

// Store persiste el log de interacciones junto con su efecto sobre la mascota.
type Store interface {
	// Apply carga la mascota, aplica el efecto de i y agrega i al log en una sola
	// unidad atómica. Pet inexistente => apperr.ErrNotFound sin cambios.
	Apply(ctx context.Context, i Interaction) (pets.Pet, Interaction, error)

	// Append agrega i al log sin tocar la mascota. Valida kind y existencia del pet.
	Append(ctx context.Context, i Interaction) (Interaction, error)

	// Recent devuelve hasta limit interacciones del pet, más nuevas primero.
	Recent(ctx context.Context, petID string, limit int) ([]Interaction, error)

	// RecentByOwner igual que Recent pero sobre todas las mascotas del owner.
	RecentByOwner(ctx context.Context, ownerUserID string, limit int) ([]RecentInteraction, error)
}
