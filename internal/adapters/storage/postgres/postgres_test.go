package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"virtual-pet/internal/domain/interactions"
	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

var petCols = []string{"id", "owner_user_id", "name", "species", "age", "happiness", "hunger", "created_at", "last_interaction_at", "updated_at"}

func petRow(id string, happiness, hunger int, last time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(petCols).AddRow(id, "u1", "Milo", "cat", 1, happiness, hunger, t0, last, t0)
}

func TestInteractionsRepo_ApplyIsOneTransaction(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	repo := NewInteractionsRepo(db)
	at := t0.Add(time.Minute)
	in := interactions.Interaction{ID: "i1", PetID: "p1", Kind: interactions.KindFeed, Magnitude: 10, ActorUserID: "u1", CreatedAt: at}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE pets SET hunger = LEAST(100, GREATEST(0, hunger + $2)), last_interaction_at = $3 WHERE id = $1")).
		WithArgs("p1", -10, at).
		WillReturnRows(petRow("p1", 70, 0, at))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO interactions (id, pet_id, kind, magnitude, actor_user_id, created_at)")).
		WithArgs("i1", "p1", "feed", 10, "u1", at).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(42))
	mock.ExpectCommit()

	p, stored, err := repo.Apply(context.Background(), in)
	req.NoError(err)
	req.Equal(0, p.Hunger)
	req.Equal(at, p.LastInteractionAt)
	req.Equal(int64(42), stored.Seq)
	req.NoError(mock.ExpectationsWereMet())
}

func TestInteractionsRepo_ApplyClampsHugeMagnitudeBeforeSQL(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	repo := NewInteractionsRepo(db)
	in := interactions.Interaction{ID: "i1", PetID: "p1", Kind: interactions.KindPlay, Magnitude: 1 << 40, ActorUserID: "u1", CreatedAt: t0}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SET happiness = LEAST(100, GREATEST(0, happiness + $2))")).
		WithArgs("p1", 100, t0).
		WillReturnRows(petRow("p1", 100, 0, t0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO interactions")).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(1))
	mock.ExpectCommit()

	_, _, err = repo.Apply(context.Background(), in)
	req.NoError(err)
	req.NoError(mock.ExpectationsWereMet())
}

func TestInteractionsRepo_ApplyUnknownPetRollsBack(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	repo := NewInteractionsRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE pets SET hunger")).
		WillReturnRows(sqlmock.NewRows(petCols))
	mock.ExpectRollback()

	_, _, err = repo.Apply(context.Background(), interactions.Interaction{ID: "i1", PetID: "missing", Kind: interactions.KindFeed, Magnitude: 10, CreatedAt: t0})
	req.ErrorIs(err, apperr.ErrNotFound)
	req.NoError(mock.ExpectationsWereMet())
}

func TestInteractionsRepo_AppendUnknownPet(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	repo := NewInteractionsRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE EXISTS (SELECT 1 FROM pets WHERE id = $2) RETURNING seq")).
		WithArgs("i1", "missing", "play", 5, "u1", t0).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}))

	_, err = repo.Append(context.Background(), interactions.Interaction{ID: "i1", PetID: "missing", Kind: interactions.KindPlay, Magnitude: 5, ActorUserID: "u1", CreatedAt: t0})
	req.ErrorIs(err, apperr.ErrNotFound)

	_, err = repo.Append(context.Background(), interactions.Interaction{Kind: "dance"})
	req.ErrorIs(err, apperr.ErrValidation)
	req.NoError(mock.ExpectationsWereMet())
}

func TestInteractionsRepo_RecentOrdersAndCaps(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	repo := NewInteractionsRepo(db)
	cols := []string{"id", "pet_id", "kind", "magnitude", "actor_user_id", "created_at", "seq"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM interactions WHERE pet_id = $1 ORDER BY created_at DESC, seq DESC LIMIT $2")).
		WithArgs("p1", interactions.MaxLimit).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("i2", "p1", "feed", 70, "u1", t0.Add(time.Second), 2).
			AddRow("i1", "p1", "play", 60, "u1", t0, 1))

	items, err := repo.Recent(context.Background(), "p1", 5000)
	req.NoError(err)
	req.Len(items, 2)
	req.Equal(interactions.KindFeed, items[0].Kind)
	req.Equal(int64(2), items[0].Seq)
	req.NoError(mock.ExpectationsWereMet())
}

func TestInteractionsRepo_RecentByOwnerJoinsName(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	repo := NewInteractionsRepo(db)
	cols := []string{"id", "pet_id", "kind", "magnitude", "actor_user_id", "created_at", "seq", "name"}

	mock.ExpectQuery(regexp.QuoteMeta("JOIN pets p ON p.id = i.pet_id WHERE p.owner_user_id = $1")).
		WithArgs("u1", interactions.DefaultLimit).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("i1", "p1", "sleep", 8, "u1", t0, 1, "Milo"))

	items, err := repo.RecentByOwner(context.Background(), "u1", 0)
	req.NoError(err)
	req.Len(items, 1)
	req.Equal("Milo", items[0].PetName)
	req.NoError(mock.ExpectationsWereMet())
}

func TestPetsRepo_GetByIDNotFound(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + petColumns + " FROM pets WHERE id = $1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(petCols))

	_, err = NewPetsRepo(db).GetByID(context.Background(), "nope")
	req.ErrorIs(err, apperr.ErrNotFound)
	req.NoError(mock.ExpectationsWereMet())
}

func TestPetsRepo_AdvanceAgeIsSingleStatement(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	at := t0.Add(time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE pets SET age = age + $2, updated_at = $3 WHERE id = $1 RETURNING")).
		WithArgs("p1", 2, at).
		WillReturnRows(sqlmock.NewRows(petCols).AddRow("p1", "u1", "Milo", "cat", 3, 100, 0, t0, t0, at))

	p, err := NewPetsRepo(db).AdvanceAge(context.Background(), "p1", 2, at)
	req.NoError(err)
	req.Equal(3, p.Age)
	req.NoError(mock.ExpectationsWereMet())
}

func TestPetsRepo_UpdateAndDeleteMissing(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	repo := NewPetsRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pets SET name = $2, species = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("p1", "Luna", "cat", t0).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM pets WHERE id = $1")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	req.ErrorIs(repo.Update(context.Background(), pets.Pet{ID: "p1", Name: "Luna", Species: "cat", UpdatedAt: t0}), apperr.ErrNotFound)
	req.ErrorIs(repo.Delete(context.Background(), "p1"), apperr.ErrNotFound)
	req.NoError(mock.ExpectationsWereMet())
}

func TestPetsRepo_ConnectionErrorIsTransient(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pets")).WillReturnError(sql.ErrConnDone)

	err = NewPetsRepo(db).Create(context.Background(), pets.Pet{ID: "p1", OwnerUserID: "u1", Name: "Milo", Species: "cat"})
	req.ErrorIs(err, apperr.ErrTransient)
}

func TestMigrate_RunsEveryStatement(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS pets")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS pets_owner_created_idx")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS interactions")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS interactions_pet_recent_idx")).WillReturnResult(sqlmock.NewResult(0, 0))

	req.NoError(Migrate(context.Background(), db))
	req.NoError(mock.ExpectationsWereMet())
}

func TestMapErr(t *testing.T) {
	req := require.New(t)

	req.NoError(mapErr(nil))
	req.ErrorIs(mapErr(sql.ErrNoRows), apperr.ErrNotFound)
	req.ErrorIs(mapErr(driver.ErrBadConn), apperr.ErrTransient)
	req.ErrorIs(mapErr(context.DeadlineExceeded), apperr.ErrTransient)

	plain := errors.New("syntax error")
	req.ErrorIs(mapErr(plain), plain)
}

func TestPetsRepo_AdvanceAgeOutOfRangeIsValidation(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE pets SET age = age + $2")).
		WithArgs("p1", 1, t0).
		WillReturnError(&pgconn.PgError{Code: "22003", Message: "integer out of range"})

	_, err = NewPetsRepo(db).AdvanceAge(context.Background(), "p1", 1, t0)
	req.ErrorIs(err, apperr.ErrValidation)
	req.NoError(mock.ExpectationsWereMet())
}
