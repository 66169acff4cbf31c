package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"virtual-pet/internal/domain/interactions"
	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"

	"github.com/dgraph-io/badger/v4"
)

type interactionRepo Store

func (r *interactionRepo) store() *Store { return (*Store)(r) }

func (r *interactionRepo) nextSeq() (int64, error) {
	n, err := r.seq.Next()
	if err != nil {
		return 0, mapErr(err)
	}
	// Sequence arranca en 0; el log usa seq >= 1.
	return int64(n) + 1, nil
}

// Apply lee la mascota, aplica el efecto y escribe pet + entrada del log en una txn.
// Si otra txn tocó la mascota entre medio, Badger devuelve ErrConflict y se reintenta.
func (r *interactionRepo) Apply(ctx context.Context, i interactions.Interaction) (pets.Pet, interactions.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return pets.Pet{}, interactions.Interaction{}, apperr.FromContext(err)
	}

	var out pets.Pet
	err := r.store().update("interactions.apply", func(txn *badger.Txn) error {
		p, err := getPet(txn, i.PetID)
		if err != nil {
			return err
		}
		// seq nuevo por intento: un reintento por conflicto queda detrás de quien ganó.
		if i.Seq, err = r.nextSeq(); err != nil {
			return err
		}
		next, err := interactions.Apply(p, i)
		if err != nil {
			return err
		}
		if err := setPet(txn, next); err != nil {
			return err
		}
		out = next
		return setInteraction(txn, i)
	})
	if err != nil {
		return pets.Pet{}, interactions.Interaction{}, err
	}
	return out, i, nil
}

func (r *interactionRepo) Append(ctx context.Context, i interactions.Interaction) (interactions.Interaction, error) {
	if _, ok := interactions.RuleFor(i.Kind); !ok {
		return interactions.Interaction{}, apperr.Validation(fmt.Sprintf("unknown interaction kind %q", i.Kind))
	}

	seq, err := r.nextSeq()
	if err != nil {
		return interactions.Interaction{}, err
	}
	i.Seq = seq

	err = r.store().update("interactions.append", func(txn *badger.Txn) error {
		if _, err := txn.Get(petKey(i.PetID)); err != nil {
			return err
		}
		return setInteraction(txn, i)
	})
	if err != nil {
		return interactions.Interaction{}, err
	}
	return i, nil
}

func (r *interactionRepo) Recent(ctx context.Context, petID string, limit int) ([]interactions.Interaction, error) {
	limit = interactions.NormalizeLimit(limit)
	var out []interactions.Interaction
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = scanRecent(txn, petID, limit)
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// RecentByOwner toma hasta limit por mascota y mezcla; alcanza para el top global.
func (r *interactionRepo) RecentByOwner(ctx context.Context, ownerUserID string, limit int) ([]interactions.RecentInteraction, error) {
	limit = interactions.NormalizeLimit(limit)
	out := make([]interactions.RecentInteraction, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := ownerPrefix(ownerUserID)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			p, err := getPet(txn, string(it.Item().Key()[len(prefix):]))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			items, err := scanRecent(txn, p.ID, limit)
			if err != nil {
				return err
			}
			for _, i := range items {
				out = append(out, interactions.RecentInteraction{Interaction: i, PetName: p.Name})
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}

	sort.Slice(out, func(a, b int) bool {
		return interactions.Newer(out[a].Interaction, out[b].Interaction)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// scanRecent recorre ix:{petID}: en reversa, como el historial de mensajes por sala.
func scanRecent(txn *badger.Txn, petID string, limit int) ([]interactions.Interaction, error) {
	prefix := interactionPrefix(petID)
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	it := txn.NewIterator(opts)
	defer it.Close()

	out := make([]interactions.Interaction, 0, limit)
	seekKey := append(append([]byte{}, prefix...), 0xFF)
	for it.Seek(seekKey); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
		var rec interactionRecord
		if err := it.Item().Value(func(v []byte) error {
			return json.Unmarshal(v, &rec)
		}); err != nil {
			return nil, err
		}
		out = append(out, rec.toInteraction())
	}
	return out, nil
}
