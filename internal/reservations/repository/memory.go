package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	reservationserrors "reservd/internal/reservations/errors"
	mongotx "reservd/pkg/db/mongo"
	"reservd/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryLedger keeps the booking ledger in process memory. Reads hand
// out copies so callers never share state with the ledger, and
// ExecuteTransaction runs its body under the write lock, which gives the
// conflict-check-then-insert sequence the same atomicity the mongo
// backend gets from a session.
type memoryLedger struct {
	mu   sync.RWMutex
	byID map[string]*model.Reservation
	// (resource|date) → reservation ids, insertion order.
	byKey map[string][]string
}

func NewMemoryLedger() ReservationRepository {
	return &memoryLedger{
		byID:  make(map[string]*model.Reservation),
		byKey: make(map[string][]string),
	}
}

// memTxKey marks contexts already inside ExecuteTransaction; the lock is
// not reentrant, so nested calls must skip it.
type memTxKey struct{}

func inMemTx(ctx context.Context) bool {
	v, _ := ctx.Value(memTxKey{}).(bool)
	return v
}

func ledgerKey(resourceID, date string) string {
	return resourceID + "|" + date
}

func cloneReservation(rsv *model.Reservation) *model.Reservation {
	c := *rsv
	return &c
}

func (l *memoryLedger) Create(ctx context.Context, rsv *model.Reservation) error {
	if !inMemTx(ctx) {
		l.mu.Lock()
		defer l.mu.Unlock()
	}

	if rsv.ID == "" {
		rsv.ID = primitive.NewObjectID().Hex()
	}
	if _, exists := l.byID[rsv.ID]; exists {
		return fmt.Errorf("duplicate reservation ID: %s", rsv.ID)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	rsv.CreatedAt = now
	rsv.UpdatedAt = now

	key := ledgerKey(rsv.ResourceID, rsv.Date)
	l.byID[rsv.ID] = cloneReservation(rsv)
	l.byKey[key] = append(l.byKey[key], rsv.ID)
	return nil
}

func (l *memoryLedger) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if !inMemTx(ctx) {
		l.mu.RLock()
		defer l.mu.RUnlock()
	}

	rsv, ok := l.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
	}
	return cloneReservation(rsv), nil
}

func (l *memoryLedger) FindAll(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Reservation, error) {
	if !inMemTx(ctx) {
		l.mu.RLock()
		defer l.mu.RUnlock()
	}

	matched := l.filter(func(rsv *model.Reservation) bool {
		return businessID == "" || rsv.BusinessID == businessID
	})
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= int64(len(matched)) {
		return []*model.Reservation{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (l *memoryLedger) Count(ctx context.Context, businessID string) (int64, error) {
	if !inMemTx(ctx) {
		l.mu.RLock()
		defer l.mu.RUnlock()
	}

	var count int64
	for _, rsv := range l.byID {
		if businessID == "" || rsv.BusinessID == businessID {
			count++
		}
	}
	return count, nil
}

func (l *memoryLedger) FindConflicts(ctx context.Context, resourceID, date, startTime, endTime string) ([]*model.Reservation, error) {
	if !inMemTx(ctx) {
		l.mu.RLock()
		defer l.mu.RUnlock()
	}

	var conflicts []*model.Reservation
	for _, id := range l.byKey[ledgerKey(resourceID, date)] {
		rsv := l.byID[id]
		if !rsv.Active() {
			continue
		}
		// Zero-padded clocks compare correctly as strings.
		if rsv.StartTime < endTime && rsv.EndTime > startTime {
			conflicts = append(conflicts, cloneReservation(rsv))
		}
	}
	sortByStart(conflicts)
	return conflicts, nil
}

func (l *memoryLedger) Search(ctx context.Context, resourceID, date string, statuses []string) ([]*model.Reservation, error) {
	if !inMemTx(ctx) {
		l.mu.RLock()
		defer l.mu.RUnlock()
	}

	if len(statuses) == 0 {
		statuses = model.ActiveStatuses()
	}
	wanted := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var matched []*model.Reservation
	for _, id := range l.byKey[ledgerKey(resourceID, date)] {
		rsv := l.byID[id]
		if wanted[rsv.Status] {
			matched = append(matched, cloneReservation(rsv))
		}
	}
	sortByStart(matched)
	return matched, nil
}

func (l *memoryLedger) UpdateStatus(ctx context.Context, id, status string) error {
	if !inMemTx(ctx) {
		l.mu.Lock()
		defer l.mu.Unlock()
	}

	rsv, ok := l.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
	}
	rsv.Status = status
	rsv.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return nil
}

func (l *memoryLedger) CompleteElapsed(ctx context.Context, cutoffDate, cutoffTime string) (int64, error) {
	if !inMemTx(ctx) {
		l.mu.Lock()
		defer l.mu.Unlock()
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	var changed int64
	for _, rsv := range l.byID {
		if rsv.Status != model.StatusConfirmed {
			continue
		}
		if rsv.Date < cutoffDate || (rsv.Date == cutoffDate && rsv.EndTime <= cutoffTime) {
			rsv.Status = model.StatusCompleted
			rsv.UpdatedAt = now
			changed++
		}
	}
	return changed, nil
}

func (l *memoryLedger) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

func (l *memoryLedger) filter(keep func(*model.Reservation) bool) []*model.Reservation {
	var matched []*model.Reservation
	for _, rsv := range l.byID {
		if keep(rsv) {
			matched = append(matched, cloneReservation(rsv))
		}
	}
	return matched
}

func sortByStart(reservations []*model.Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].StartTime < reservations[j].StartTime
	})
}
