package idempotency

import (
	"context"
	"time"
)

// Store guarda el resultado de operaciones no idempotentes por clave.
//
// Begin reserva key:
//   - started=true: el caller ejecuta y luego llama Complete o Abort.
//   - started=false y payload != nil: resultado previo, no re-ejecutar.
//   - started=false y payload == nil: otra ejecución con la misma key sigue en curso.
type Store interface {
	Begin(ctx context.Context, key string, ttl time.Duration) (payload []byte, started bool, err error)
	Complete(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Abort(ctx context.Context, key string) error
}
