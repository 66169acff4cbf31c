package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"
)

const petColumns = `id, owner_user_id, name, species, age, happiness, hunger, created_at, last_interaction_at, updated_at`

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		p.Species,
		p.Age,
		p.Happiness,
		p.Hunger,
		p.CreatedAt,
		p.LastInteractionAt,
		p.UpdatedAt,
	)
	return mapErr(err)
}

// Update solo toca el perfil; stats y edad tienen sus propias sentencias.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			species = $3,
			updated_at = $4
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Species,
		p.UpdatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireOneRow(res)
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, apperr.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, mapErr(err)
	}
	return p, nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE owner_user_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerUserID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, p)
	}

	return out, mapErr(rows.Err())
}

// Delete no borra interacciones (no hay FK).
func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	return requireOneRow(res)
}

// AdvanceAge incrementa en la misma sentencia; dos llamadas concurrentes suman ambas.
func (r *PetsRepo) AdvanceAge(ctx context.Context, id string, years int, at time.Time) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE pets
		SET age = age + $2, updated_at = $3
		WHERE id = $1
		RETURNING `+petColumns,
		id, years, at,
	)
	p, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, mapErr(err)
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPet(s scanner) (pets.Pet, error) {
	var p pets.Pet
	err := s.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Name,
		&p.Species,
		&p.Age,
		&p.Happiness,
		&p.Hunger,
		&p.CreatedAt,
		&p.LastInteractionAt,
		&p.UpdatedAt,
	)
	return p, err
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
