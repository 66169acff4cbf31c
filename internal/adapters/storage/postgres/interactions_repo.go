package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"virtual-pet/internal/domain/interactions"
	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"
)

const interactionColumns = `id, pet_id, kind, magnitude, actor_user_id, created_at, seq`

type InteractionsRepo struct {
	db *sql.DB
}

func NewInteractionsRepo(db *sql.DB) *InteractionsRepo {
	return &InteractionsRepo{db: db}
}

// applyQuery arma el UPDATE con el clamp dentro de la sentencia, así dos
// interacciones concurrentes no se pisan. column sale de interactions.Field.
func applyQuery(column string) string {
	return fmt.Sprintf(`
		UPDATE pets
		SET %[1]s = LEAST(%[2]d, GREATEST(%[3]d, %[1]s + $2)), last_interaction_at = $3
		WHERE id = $1
		RETURNING `+petColumns, column, pets.MaxStat, pets.MinStat)
}

const insertInteraction = `
		INSERT INTO interactions (id, pet_id, kind, magnitude, actor_user_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING seq`

func (r *InteractionsRepo) Apply(ctx context.Context, i interactions.Interaction) (pets.Pet, interactions.Interaction, error) {
	rule, ok := interactions.RuleFor(i.Kind)
	if !ok {
		return pets.Pet{}, interactions.Interaction{}, apperr.Validation(fmt.Sprintf("unknown interaction kind %q", i.Kind))
	}
	column, err := columnFor(rule.Field)
	if err != nil {
		return pets.Pet{}, interactions.Interaction{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return pets.Pet{}, interactions.Interaction{}, mapErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	p, err := scanPet(tx.QueryRowContext(ctx, applyQuery(column), i.PetID, rule.Delta(i.Magnitude), i.CreatedAt))
	if err != nil {
		return pets.Pet{}, interactions.Interaction{}, mapErr(err)
	}

	if err := tx.QueryRowContext(ctx, insertInteraction,
		i.ID, i.PetID, string(i.Kind), i.Magnitude, i.ActorUserID, i.CreatedAt,
	).Scan(&i.Seq); err != nil {
		return pets.Pet{}, interactions.Interaction{}, mapErr(err)
	}

	if err := tx.Commit(); err != nil {
		return pets.Pet{}, interactions.Interaction{}, mapErr(err)
	}
	return p, i, nil
}

// Append inserta solo si la mascota existe, en una sentencia.
func (r *InteractionsRepo) Append(ctx context.Context, i interactions.Interaction) (interactions.Interaction, error) {
	if _, ok := interactions.RuleFor(i.Kind); !ok {
		return interactions.Interaction{}, apperr.Validation(fmt.Sprintf("unknown interaction kind %q", i.Kind))
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO interactions (id, pet_id, kind, magnitude, actor_user_id, created_at)
		SELECT $1,$2,$3,$4,$5,$6
		WHERE EXISTS (SELECT 1 FROM pets WHERE id = $2)
		RETURNING seq
	`, i.ID, i.PetID, string(i.Kind), i.Magnitude, i.ActorUserID, i.CreatedAt).Scan(&i.Seq)
	if err != nil {
		return interactions.Interaction{}, mapErr(err)
	}
	return i, nil
}

func (r *InteractionsRepo) Recent(ctx context.Context, petID string, limit int) ([]interactions.Interaction, error) {
	limit = interactions.NormalizeLimit(limit)
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+interactionColumns+`
		FROM interactions
		WHERE pet_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2
	`, petID, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]interactions.Interaction, 0, limit)
	for rows.Next() {
		var i interactions.Interaction
		if err := scanInteraction(rows, &i); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, i)
	}
	return out, mapErr(rows.Err())
}

func (r *InteractionsRepo) RecentByOwner(ctx context.Context, ownerUserID string, limit int) ([]interactions.RecentInteraction, error) {
	limit = interactions.NormalizeLimit(limit)
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.pet_id, i.kind, i.magnitude, i.actor_user_id, i.created_at, i.seq, p.name
		FROM interactions i
		JOIN pets p ON p.id = i.pet_id
		WHERE p.owner_user_id = $1
		ORDER BY i.created_at DESC, i.seq DESC
		LIMIT $2
	`, ownerUserID, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]interactions.RecentInteraction, 0, limit)
	for rows.Next() {
		var ri interactions.RecentInteraction
		if err := scanInteraction(rows, &ri.Interaction, &ri.PetName); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, ri)
	}
	return out, mapErr(rows.Err())
}

func scanInteraction(s scanner, i *interactions.Interaction, extra ...any) error {
	var kind string
	dest := append([]any{&i.ID, &i.PetID, &kind, &i.Magnitude, &i.ActorUserID, &i.CreatedAt, &i.Seq}, extra...)
	if err := s.Scan(dest...); err != nil {
		return err
	}
	i.Kind = interactions.Kind(kind)
	return nil
}

func columnFor(f interactions.Field) (string, error) {
	switch f {
	case interactions.FieldHappiness, interactions.FieldHunger:
		return string(f), nil
	default:
		return "", fmt.Errorf("no column for field %q", f)
	}
}
