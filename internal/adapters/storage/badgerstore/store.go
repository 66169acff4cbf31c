// Package badgerstore persiste mascotas y log en BadgerDB embebido.
//
// Keys:
//
//	pet:{id}                               -> petRecord (JSON)
//	owner:{ownerUserID}:{id}               -> vacío (índice)
//	ix:{petID}:{%019d nanos}:{%019d seq}   -> interactionRecord (JSON)
//
// El padding deja el log ordenado lexicográficamente por tiempo; seq desempata.
package badgerstore

import (
	"errors"
	"fmt"

	"virtual-pet/internal/domain/interactions"
	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/platform/apperr"
	"virtual-pet/internal/platform/logger"

	"github.com/dgraph-io/badger/v4"
)

const (
	seqKey     = "seq:interactions"
	seqLease   = 100
	maxRetries = 5
)

type Store struct {
	db  *badger.DB
	seq *badger.Sequence
	log logger.Logger
}

// Open abre (o crea) la base en path.
func Open(path string, log logger.Logger) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	s, err := New(db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New usa una *badger.DB ya abierta (tests con WithInMemory).
func New(db *badger.DB, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Discard()
	}
	seq, err := db.GetSequence([]byte(seqKey), seqLease)
	if err != nil {
		return nil, fmt.Errorf("badger sequence: %w", err)
	}
	return &Store{db: db, seq: seq, log: log}, nil
}

// Close libera la secuencia y cierra la base.
func (s *Store) Close() error {
	return errors.Join(s.seq.Release(), s.db.Close())
}

func (s *Store) Pets() pets.Repository {
	return (*petRepo)(s)
}

func (s *Store) Interactions() interactions.Store {
	return (*interactionRepo)(s)
}

// update corre fn en una txn de escritura, reintentando ante ErrConflict.
func (s *Store) update(op string, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return mapErr(err)
		}
		s.log.Debug("badger txn conflict, retrying", map[string]any{"op": op, "attempt": attempt})
	}
	return apperr.Transient(err)
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return apperr.ErrNotFound
	case errors.Is(err, badger.ErrDBClosed), errors.Is(err, badger.ErrBlockedWrites):
		return apperr.Transient(err)
	default:
		return apperr.FromContext(err)
	}
}
