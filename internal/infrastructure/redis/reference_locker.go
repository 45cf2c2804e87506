package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/replenishment-api/internal/application/receiving"
	"github.com/jhoicas/replenishment-api/internal/domain"
)

var _ receiving.ReferenceLocker = (*ReferenceLocker)(nil)

const keyPrefix = "receive-stock:"

// ReferenceLocker lock distribuido por referencia sobre Redis (bsm/redislock).
type ReferenceLocker struct {
	locker  *redislock.Client
	ttl     time.Duration
	retries int
	backoff time.Duration
}

// NewReferenceLocker construye el locker. ttl debe cubrir de sobra una transacción de recepción.
func NewReferenceLocker(client goredis.UniversalClient, ttl time.Duration) *ReferenceLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ReferenceLocker{
		locker:  redislock.New(client),
		ttl:     ttl,
		retries: 20,
		backoff: 100 * time.Millisecond,
	}
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		PoolSize: 20,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Lock obtiene el lock de la referencia, reintentando con backoff lineal.
// Si otra instancia lo mantiene más allá de los reintentos devuelve domain.ErrConcurrency.
func (l *ReferenceLocker) Lock(ctx context.Context, reference string) (func(context.Context) error, error) {
	lock, err := l.locker.Obtain(ctx, keyPrefix+reference, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("%w: referencia %s en proceso", domain.ErrConcurrency, reference)
		}
		return nil, fmt.Errorf("obtener lock redis: %w", err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}
