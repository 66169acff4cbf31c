//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../../mocks/mock_pets_repository.go -package=mocks
package pets

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id string) error

	// AdvanceAge suma years a la edad de forma atómica en el store.
	AdvanceAge(ctx context.Context, id string, years int, at time.Time) (Pet, error)
}
