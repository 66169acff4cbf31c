package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"virtual-pet/internal/platform/apperr"

	"github.com/redis/go-redis/v9"
)

// pending marca una key reservada sin resultado todavía.
const pending = "\x00pending"

// beginScript devuelve el valor existente o reserva la key.
// KEYS[1] = key
// ARGV[1] = marcador pending
// ARGV[2] = ttl en ms
var beginScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if v then
    return v
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return false
`)

type Store struct {
	client *redis.Client
	prefix string
}

func New(addr, password string, db int) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client, prefix: "idem:"}
}

// Ping verifica la conexión al arrancar.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperr.Transient(fmt.Errorf("redis ping: %w", err))
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Begin(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
	v, err := beginScript.Run(ctx, s.client, []string{s.prefix + key}, pending, ttl.Milliseconds()).Text()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, true, nil
	case err != nil:
		return nil, false, apperr.Transient(fmt.Errorf("redis idempotency begin: %w", err))
	case v == pending:
		return nil, false, nil
	default:
		return []byte(v), false, nil
	}
}

func (s *Store) Complete(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, payload, ttl).Err(); err != nil {
		return apperr.Transient(fmt.Errorf("redis idempotency complete: %w", err))
	}
	return nil
}

func (s *Store) Abort(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return apperr.Transient(fmt.Errorf("redis idempotency abort: %w", err))
	}
	return nil
}
