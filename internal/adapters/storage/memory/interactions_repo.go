package memory

import (
	"context"
	"fmt"
	"sort"

	"virtual-pet/internal/domain/interactions"
	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"
)

type interactionRepo Store

func (r *interactionRepo) Apply(ctx context.Context, i interactions.Interaction) (pets.Pet, interactions.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return pets.Pet{}, interactions.Interaction{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pets[i.PetID]
	if !ok {
		return pets.Pet{}, interactions.Interaction{}, apperr.ErrNotFound
	}

	next, err := interactions.Apply(p, i)
	if err != nil {
		return pets.Pet{}, interactions.Interaction{}, err
	}

	r.pets[p.ID] = next
	return next, r.appendLocked(i), nil
}

func (r *interactionRepo) Append(ctx context.Context, i interactions.Interaction) (interactions.Interaction, error) {
	if _, ok := interactions.RuleFor(i.Kind); !ok {
		return interactions.Interaction{}, apperr.Validation(fmt.Sprintf("unknown interaction kind %q", i.Kind))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pets[i.PetID]; !ok {
		return interactions.Interaction{}, apperr.ErrNotFound
	}
	return r.appendLocked(i), nil
}

func (r *interactionRepo) appendLocked(i interactions.Interaction) interactions.Interaction {
	r.seq++
	i.Seq = r.seq
	r.log = append(r.log, i)
	return i
}

func (r *interactionRepo) Recent(ctx context.Context, petID string, limit int) ([]interactions.Interaction, error) {
	limit = interactions.NormalizeLimit(limit)
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]interactions.Interaction, 0)
	for _, i := range r.log {
		if i.PetID == petID {
			out = append(out, i)
		}
	}
	return newestFirst(out, limit), nil
}

func (r *interactionRepo) RecentByOwner(ctx context.Context, ownerUserID string, limit int) ([]interactions.RecentInteraction, error) {
	limit = interactions.NormalizeLimit(limit)
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := map[string]string{}
	for _, p := range r.pets {
		if p.OwnerUserID == ownerUserID {
			names[p.ID] = p.Name
		}
	}

	matched := make([]interactions.Interaction, 0)
	for _, i := range r.log {
		if _, ok := names[i.PetID]; ok {
			matched = append(matched, i)
		}
	}

	matched = newestFirst(matched, limit)
	out := make([]interactions.RecentInteraction, 0, len(matched))
	for _, i := range matched {
		out = append(out, interactions.RecentInteraction{Interaction: i, PetName: names[i.PetID]})
	}
	return out, nil
}

func newestFirst(items []interactions.Interaction, limit int) []interactions.Interaction {
	sort.Slice(items, func(a, b int) bool {
		return interactions.Newer(items[a], items[b])
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
