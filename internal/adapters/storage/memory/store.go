package memory

import (
	"sync"

	"virtual-pet/internal/domain/interactions"
	"virtual-pet/internal/domain/pets"
)

// Store guarda mascotas y log en memoria detrás de un solo mutex,
// así Apply es atómico respecto de lecturas concurrentes.
type Store struct {
	mu   sync.RWMutex
	pets map[string]pets.Pet
	log  []interactions.Interaction // orden de inserción
	seq  int64
}

func New() *Store {
	return &Store{
		pets: make(map[string]pets.Pet),
	}
}

func (s *Store) Pets() pets.Repository {
	return (*petRepo)(s)
}

func (s *Store) Interactions() interactions.Store {
	return (*interactionRepo)(s)
}
