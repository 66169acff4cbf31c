package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"
)

type petRepo Store

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.pets[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.pets[p.ID] = p
	return nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.pets[p.ID]
	if !exists {
		return apperr.ErrNotFound
	}
	// Solo perfil; stats/edad cambian por Apply/AdvanceAge.
	current.Name = p.Name
	current.Species = p.Species
	current.UpdatedAt = p.UpdatedAt
	r.pets[p.ID] = current
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pets[id]
	if !ok {
		return pets.Pet{}, apperr.ErrNotFound
	}
	return p, nil
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.pets {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete no toca el log: las interacciones se conservan.
func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pets[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.pets, id)
	return nil
}

func (r *petRepo) AdvanceAge(ctx context.Context, id string, years int, at time.Time) (pets.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pets[id]
	if !ok {
		return pets.Pet{}, apperr.ErrNotFound
	}
	age, err := pets.AddAge(p.Age, years)
	if err != nil {
		return pets.Pet{}, err
	}
	p.Age = age
	p.UpdatedAt = at
	r.pets[id] = p
	return p, nil
}
