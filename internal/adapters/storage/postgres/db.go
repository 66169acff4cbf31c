package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"virtual-pet/internal/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed schema.sql
var schema string

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperr.Transient(err)
	}

	return db, nil
}

// Migrate crea tablas e índices si no existen. Idempotente.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", mapErr(err))
		}
	}
	return nil
}

const (
	uniqueViolation   = "23505"
	numericOutOfRange = "22003"
	checkViolation    = "23514"
)

// mapErr traduce errores del driver a la taxonomía de apperr.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	var connErr *pgconn.ConnectError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return fmt.Errorf("%w: %s", apperr.ErrConflict, pgErr.ConstraintName)
	case errors.As(err, &pgErr) && (pgErr.Code == numericOutOfRange || pgErr.Code == checkViolation):
		return apperr.Validation(pgErr.Message)
	case errors.As(err, &connErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		pgconn.Timeout(err):
		return apperr.Transient(err)
	default:
		return apperr.FromContext(err)
	}
}
