package locks

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLocker hands out one token per key inside a single process. Each
// key is a one-slot channel; waiters park on the channel and the entry is
// dropped once the last holder or waiter is gone, so idle keys do not
// accumulate.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	slot chan struct{}
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{entries: make(map[string]*lockEntry)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{slot: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.slot <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-e.slot
				l.unref(key, e)
			})
		}
		return release, nil
	case <-ctx.Done():
		l.unref(key, e)
		return nil, fmt.Errorf("%w: %v", ErrNotAcquired, ctx.Err())
	}
}

func (l *MemoryLocker) unref(key string, e *lockEntry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()
}

// held reports the number of live entries; test hook.
func (l *MemoryLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
