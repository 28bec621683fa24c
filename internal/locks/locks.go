// Package locks provides the per-(resource, date) exclusivity token the
// reservation coordinator holds while it validates and commits. Three
// backends share one contract: in-process mutexes for a single instance,
// mongo leases or postgres advisory locks when several instances share
// the ledger.
package locks

import (
	"context"
	"errors"
	"fmt"

	"reservd/pkg/config"
)

// ErrNotAcquired means the token is held elsewhere and the attempt timed
// out waiting. Callers retry with backoff; exhaustion surfaces as Busy.
var ErrNotAcquired = errors.New("slot lock not acquired")

// ReleaseFunc frees the token. Safe to call more than once; never blocks
// on the caller's context.
type ReleaseFunc func()

// Locker serializes critical sections per key. Acquire blocks until the
// token is obtained or ctx expires.
type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// Key builds the token key for one resource on one date. Different dates
// of the same resource never contend.
func Key(resourceID, date string) string {
	return resourceID + "|" + date
}

// New selects the backend configured by LOCK_BACKEND.
func New(cfg *config.Config) (Locker, error) {
	switch cfg.LockBackend {
	case config.LockBackendMemory:
		return NewMemoryLocker(), nil
	case config.LockBackendMongo:
		return NewMongoLocker(cfg), nil
	case config.LockBackendPostgres:
		if cfg.Client.Postgres == nil {
			return nil, fmt.Errorf("postgres lock backend requires a connected pool")
		}
		return NewPostgresLocker(cfg), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}
