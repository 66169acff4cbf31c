package badgerstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"

	"github.com/dgraph-io/badger/v4"
)

type petRepo Store

func (r *petRepo) store() *Store { return (*Store)(r) }

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	return r.store().update("pets.create", func(txn *badger.Txn) error {
		if _, err := txn.Get(petKey(p.ID)); err == nil {
			return apperr.ErrConflict
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := setPet(txn, p); err != nil {
			return err
		}
		return txn.Set(ownerKey(p.OwnerUserID, p.ID), nil)
	})
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	var p pets.Pet
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = getPet(txn, id)
		return err
	})
	if err != nil {
		return pets.Pet{}, mapErr(err)
	}
	return p, nil
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	out := make([]pets.Pet, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := ownerPrefix(ownerUserID)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := string(it.Item().Key()[len(prefix):])
			p, err := getPet(txn, id)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	return r.store().update("pets.update", func(txn *badger.Txn) error {
		current, err := getPet(txn, p.ID)
		if err != nil {
			return err
		}
		current.Name = p.Name
		current.Species = p.Species
		current.UpdatedAt = p.UpdatedAt
		return setPet(txn, current)
	})
}

// Delete borra la mascota y su índice; las keys ix: quedan.
func (r *petRepo) Delete(ctx context.Context, id string) error {
	return r.store().update("pets.delete", func(txn *badger.Txn) error {
		p, err := getPet(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(ownerKey(p.OwnerUserID, p.ID)); err != nil {
			return err
		}
		return txn.Delete(petKey(p.ID))
	})
}

func (r *petRepo) AdvanceAge(ctx context.Context, id string, years int, at time.Time) (pets.Pet, error) {
	var out pets.Pet
	err := r.store().update("pets.advance_age", func(txn *badger.Txn) error {
		p, err := getPet(txn, id)
		if err != nil {
			return err
		}
		if p.Age, err = pets.AddAge(p.Age, years); err != nil {
			return err
		}
		p.UpdatedAt = at
		out = p
		return setPet(txn, p)
	})
	if err != nil {
		return pets.Pet{}, err
	}
	return out, nil
}
