package badgerstore

import (
	"encoding/json"
	"fmt"
	"time"

	"virtual-pet/internal/domain/interactions"
	"virtual-pet/internal/domain/pets"

	"github.com/dgraph-io/badger/v4"
)

type petRecord struct {
	ID                string    `json:"id"`
	OwnerUserID       string    `json:"owner_user_id"`
	Name              string    `json:"name"`
	Species           string    `json:"species"`
	Age               int       `json:"age"`
	Happiness         int       `json:"happiness"`
	Hunger            int       `json:"hunger"`
	CreatedAt         time.Time `json:"created_at"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type interactionRecord struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id"`
	Kind        string    `json:"kind"`
	Magnitude   int       `json:"magnitude"`
	ActorUserID string    `json:"actor_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	Seq         int64     `json:"seq"`
}

func petKey(id string) []byte {
	return []byte("pet:" + id)
}

func ownerPrefix(owner string) []byte {
	return []byte("owner:" + owner + ":")
}

func ownerKey(owner, id string) []byte {
	return append(ownerPrefix(owner), id...)
}

func interactionPrefix(petID string) []byte {
	return []byte("ix:" + petID + ":")
}

func interactionKey(i interactions.Interaction) []byte {
	return []byte(fmt.Sprintf("ix:%s:%019d:%019d", i.PetID, i.CreatedAt.UnixNano(), i.Seq))
}

func fromPet(p pets.Pet) petRecord {
	return petRecord{
		ID:                p.ID,
		OwnerUserID:       p.OwnerUserID,
		Name:              p.Name,
		Species:           p.Species,
		Age:               p.Age,
		Happiness:         p.Happiness,
		Hunger:            p.Hunger,
		CreatedAt:         p.CreatedAt,
		LastInteractionAt: p.LastInteractionAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (r petRecord) toPet() pets.Pet {
	return pets.Pet{
		ID:                r.ID,
		OwnerUserID:       r.OwnerUserID,
		Name:              r.Name,
		Species:           r.Species,
		Age:               r.Age,
		Happiness:         r.Happiness,
		Hunger:            r.Hunger,
		CreatedAt:         r.CreatedAt.UTC(),
		LastInteractionAt: r.LastInteractionAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
}

func fromInteraction(i interactions.Interaction) interactionRecord {
	return interactionRecord{
		ID:          i.ID,
		PetID:       i.PetID,
		Kind:        string(i.Kind),
		Magnitude:   i.Magnitude,
		ActorUserID: i.ActorUserID,
		CreatedAt:   i.CreatedAt,
		Seq:         i.Seq,
	}
}

func (r interactionRecord) toInteraction() interactions.Interaction {
	return interactions.Interaction{
		ID:          r.ID,
		PetID:       r.PetID,
		Kind:        interactions.Kind(r.Kind),
		Magnitude:   r.Magnitude,
		ActorUserID: r.ActorUserID,
		CreatedAt:   r.CreatedAt.UTC(),
		Seq:         r.Seq,
	}
}

func getPet(txn *badger.Txn, id string) (pets.Pet, error) {
	item, err := txn.Get(petKey(id))
	if err != nil {
		return pets.Pet{}, err
	}
	var rec petRecord
	if err := item.Value(func(v []byte) error {
		return json.Unmarshal(v, &rec)
	}); err != nil {
		return pets.Pet{}, err
	}
	return rec.toPet(), nil
}

func setPet(txn *badger.Txn, p pets.Pet) error {
	b, err := json.Marshal(fromPet(p))
	if err != nil {
		return err
	}
	return txn.Set(petKey(p.ID), b)
}

func setInteraction(txn *badger.Txn, i interactions.Interaction) error {
	b, err := json.Marshal(fromInteraction(i))
	if err != nil {
		return err
	}
	return txn.Set(interactionKey(i), b)
}
