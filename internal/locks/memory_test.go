package locks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryLockerMutualExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	key := Key("res-1", "2026-09-01")

	var mu sync.Mutex
	inCritical := 0
	maxInCritical := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release, err := locker.Acquire(context.Background(), key)
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer release()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxInCritical != 1 {
		t.Errorf("critical section held by %d goroutines at once", maxInCritical)
	}
	if locker.held() != 0 {
		t.Errorf("%d entries leaked after all releases", locker.held())
	}
}

func TestMemoryLockerKeysAreIndependent(t *testing.T) {
	locker := NewMemoryLocker()

	releaseA, err := locker.Acquire(context.Background(), Key("res-1", "2026-09-01"))
	if err != nil {
		t.Fatalf("Acquire A: %v", err)
	}
	defer releaseA()

	// Same resource, different date: must not block.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	releaseB, err := locker.Acquire(ctx, Key("res-1", "2026-09-02"))
	if err != nil {
		t.Fatalf("different date blocked on held lock: %v", err)
	}
	releaseB()
}

func TestMemoryLockerAcquireTimesOut(t *testing.T) {
	locker := NewMemoryLocker()
	key := Key("res-1", "2026-09-01")

	release, err := locker.Acquire(context.Background(), key)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, key)
	if !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("err = %v, want ErrNotAcquired", err)
	}

	release()

	// After release the key must be obtainable again.
	release2, err := locker.Acquire(context.Background(), key)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	release2()

	if locker.held() != 0 {
		t.Errorf("%d entries leaked", locker.held())
	}
}

func TestMemoryLockerReleaseIsIdempotent(t *testing.T) {
	locker := NewMemoryLocker()
	key := Key("res-1", "2026-09-01")

	release, err := locker.Acquire(context.Background(), key)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	release()
	release() // second call must be a no-op, not free someone else's token

	release2, err := locker.Acquire(context.Background(), key)
	if err != nil {
		t.Fatalf("re-Acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locker.Acquire(ctx, key); !errors.Is(err, ErrNotAcquired) {
		t.Errorf("token was double-released: second holder got in, err = %v", err)
	}

	release2()
}

func TestKey(t *testing.T) {
	if Key("res-1", "2026-09-01") == Key("res-1", "2026-09-02") {
		t.Error("different dates must produce different keys")
	}
	if Key("res-1", "2026-09-01") == Key("res-2", "2026-09-01") {
		t.Error("different resources must produce different keys")
	}
}

func TestKeyHashIsStable(t *testing.T) {
	a := keyHash("res-1|2026-09-01")
	b := keyHash("res-1|2026-09-01")
	if a != b {
		t.Error("hash must be deterministic")
	}
	if keyHash("res-1|2026-09-01") == keyHash("res-1|2026-09-02") {
		t.Error("distinct keys should hash apart")
	}
}
