package locks

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"reservd/pkg/config"
	"reservd/pkg/logger"
)

const lockPollInterval = 25 * time.Millisecond

// PostgresLocker maps the token onto session-scoped advisory locks. The
// key hashes to the int64 pg_try_advisory_lock wants; the connection is
// pinned for the token's lifetime because advisory locks belong to the
// session that took them.
type PostgresLocker struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPostgresLocker(cfg *config.Config) *PostgresLocker {
	return &PostgresLocker{
		pool: cfg.Client.Postgres,
		log:  cfg.Log.WithComponent("postgres_locker"),
	}
}

func (l *PostgresLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	id := keyHash(key)
	for {
		var locked bool
		if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", id).Scan(&locked); err != nil {
			conn.Release()
			return nil, fmt.Errorf("try advisory lock for %s: %w", key, err)
		}
		if locked {
			break
		}

		select {
		case <-ctx.Done():
			conn.Release()
			return nil, fmt.Errorf("%w: %v", ErrNotAcquired, ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()

			if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", id); err != nil {
				l.log.Error("Failed to release advisory lock",
					"key", key,
					"error", err,
				)
			}
			conn.Release()
		})
	}
	return release, nil
}

// keyHash folds a token key into the signed 64-bit space advisory locks
// use. FNV-1a keeps it deterministic across instances.
func keyHash(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}
