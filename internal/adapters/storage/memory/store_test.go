package memory

import (
	"context"
	"math"
	"testing"
	"time"

	"virtual-pet/internal/domain/interactions"
	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var t0 = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

func seedPet(t *testing.T, s *Store, owner string, happiness, hunger int) pets.Pet {
	t.Helper()
	p := pets.Pet{
		ID:                uuid.NewString(),
		OwnerUserID:       owner,
		Name:              "Milo",
		Species:           "cat",
		Happiness:         happiness,
		Hunger:            hunger,
		CreatedAt:         t0,
		LastInteractionAt: t0,
		UpdatedAt:         t0,
	}
	require.NoError(t, s.Pets().Create(context.Background(), p))
	return p
}

func interaction(petID string, kind interactions.Kind, magnitude int, at time.Time) interactions.Interaction {
	return interactions.Interaction{
		ID:          uuid.NewString(),
		PetID:       petID,
		Kind:        kind,
		Magnitude:   magnitude,
		ActorUserID: "u1",
		CreatedAt:   at,
	}
}

func TestApply_UpdatesPetAndAppendsLog(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := New()
	p := seedPet(t, s, "u1", 50, 5)

	got, stored, err := s.Interactions().Apply(ctx, interaction(p.ID, interactions.KindFeed, 10, t0.Add(time.Minute)))
	req.NoError(err)
	req.Equal(0, got.Hunger)
	req.Equal(int64(1), stored.Seq)

	reloaded, err := s.Pets().GetByID(ctx, p.ID)
	req.NoError(err)
	req.Equal(got, reloaded)

	recent, err := s.Interactions().Recent(ctx, p.ID, 1)
	req.NoError(err)
	req.Equal([]interactions.Interaction{stored}, recent)
}

func TestApply_UnknownPet(t *testing.T) {
	req := require.New(t)
	s := New()

	_, _, err := s.Interactions().Apply(context.Background(), interaction("missing", interactions.KindFeed, 10, t0))
	req.ErrorIs(err, apperr.ErrNotFound)
	req.Empty(s.log)
}

func TestAppend(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := New()
	p := seedPet(t, s, "u1", 50, 50)

	_, err := s.Interactions().Append(ctx, interaction("missing", interactions.KindPlay, 5, t0))
	req.ErrorIs(err, apperr.ErrNotFound)

	_, err = s.Interactions().Append(ctx, interaction(p.ID, "dance", 5, t0))
	req.ErrorIs(err, apperr.ErrValidation)
	req.Empty(s.log)

	stored, err := s.Interactions().Append(ctx, interaction(p.ID, interactions.KindPlay, 5, t0))
	req.NoError(err)

	recent, err := s.Interactions().Recent(ctx, p.ID, 1)
	req.NoError(err)
	req.Equal(stored.ID, recent[0].ID)

	unchanged, err := s.Pets().GetByID(ctx, p.ID)
	req.NoError(err)
	req.Equal(50, unchanged.Happiness, "append does not touch the pet")
}

func TestRecent_OrderAndLimit(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := New()
	p := seedPet(t, s, "u1", 50, 50)

	// Insertadas fuera de orden temporal; dos con el mismo instante.
	ats := []time.Time{t0.Add(3 * time.Second), t0.Add(time.Second), t0.Add(2 * time.Second), t0.Add(2 * time.Second)}
	var ids []string
	for _, at := range ats {
		stored, err := s.Interactions().Append(ctx, interaction(p.ID, interactions.KindClean, 1, at))
		req.NoError(err)
		ids = append(ids, stored.ID)
	}

	recent, err := s.Interactions().Recent(ctx, p.ID, 3)
	req.NoError(err)
	req.Len(recent, 3)
	req.Equal([]string{ids[0], ids[3], ids[2]}, []string{recent[0].ID, recent[1].ID, recent[2].ID})
	for i := 1; i < len(recent); i++ {
		req.True(interactions.Newer(recent[i-1], recent[i]))
	}

	recent, err = s.Interactions().Recent(ctx, p.ID, 0)
	req.NoError(err)
	req.Len(recent, 4, "limit <= 0 uses the default")
}

func TestApply_ConcurrentFeedsDoNotLoseUpdates(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := New()
	p := seedPet(t, s, "u1", 50, 20)

	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, _, err := s.Interactions().Apply(ctx, interaction(p.ID, interactions.KindFeed, 10, t0.Add(time.Second)))
			return err
		})
	}
	req.NoError(g.Wait())

	got, err := s.Pets().GetByID(ctx, p.ID)
	req.NoError(err)
	req.Equal(0, got.Hunger)

	recent, err := s.Interactions().Recent(ctx, p.ID, 10)
	req.NoError(err)
	req.Len(recent, 2)
}

func TestApply_ManyConcurrentPlays(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := New()
	p := seedPet(t, s, "u1", 0, 0)

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, _, err := s.Interactions().Apply(ctx, interaction(p.ID, interactions.KindPlay, 1, t0))
			return err
		})
	}
	req.NoError(g.Wait())

	got, err := s.Pets().GetByID(ctx, p.ID)
	req.NoError(err)
	req.Equal(50, got.Happiness)
	req.Len(s.log, 50)
}

func TestPets_CRUD(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := New()
	p := seedPet(t, s, "u1", 100, 0)
	seedPet(t, s, "u2", 100, 0)

	req.Error(s.Pets().Create(ctx, p), "duplicate id")

	list, err := s.Pets().ListByOwner(ctx, "u1")
	req.NoError(err)
	req.Len(list, 1)

	p.Name = "Luna"
	p.Happiness = 1 // ignorado por Update
	req.NoError(s.Pets().Update(ctx, p))
	got, err := s.Pets().GetByID(ctx, p.ID)
	req.NoError(err)
	req.Equal("Luna", got.Name)
	req.Equal(100, got.Happiness)

	aged, err := s.Pets().AdvanceAge(ctx, p.ID, 2, t0.Add(time.Hour))
	req.NoError(err)
	req.Equal(2, aged.Age)

	_, err = s.Interactions().Append(ctx, interaction(p.ID, interactions.KindFeed, 1, t0))
	req.NoError(err)

	req.NoError(s.Pets().Delete(ctx, p.ID))
	_, err = s.Pets().GetByID(ctx, p.ID)
	req.ErrorIs(err, apperr.ErrNotFound)
	req.ErrorIs(s.Pets().Delete(ctx, p.ID), apperr.ErrNotFound)
	req.Len(s.log, 1, "log survives pet deletion")

	byOwner, err := s.Interactions().RecentByOwner(ctx, "u1", 10)
	req.NoError(err)
	req.Empty(byOwner)
}

func TestPets_AdvanceAgeNeverOverflows(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := New()
	p := seedPet(t, s, "u1", 100, 0)

	aged, err := s.Pets().AdvanceAge(ctx, p.ID, pets.MaxAge, t0)
	req.NoError(err)
	req.Equal(pets.MaxAge, aged.Age)

	_, err = s.Pets().AdvanceAge(ctx, p.ID, 1, t0.Add(time.Hour))
	req.ErrorIs(err, apperr.ErrValidation)

	_, err = s.Pets().AdvanceAge(ctx, p.ID, math.MaxInt, t0.Add(time.Hour))
	req.ErrorIs(err, apperr.ErrValidation)

	got, err := s.Pets().GetByID(ctx, p.ID)
	req.NoError(err)
	req.Equal(pets.MaxAge, got.Age)
	req.Equal(t0, got.UpdatedAt)
	req.True(got.Valid())
}
