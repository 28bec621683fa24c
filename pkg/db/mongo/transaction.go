package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	apperrors "reservd/pkg/errors"
)

// TransactionFunc runs inside a transaction. The context it receives is
// the session context; repository calls made with it join the
// transaction automatically.
type TransactionFunc func(ctx context.Context) error

// TransactionManager executes a function atomically: either every write
// inside fn commits, or none do. The in-memory ledger satisfies this
// interface too, so the coordinator does not care which storage backs it.
type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type transactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &transactionManager{client: client}
}

func (m *transactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})
	if err != nil {
		// Domain failures (e.g. a slot conflict found inside the
		// transaction) pass through untouched so callers can map them.
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// InTransaction reports whether ctx is a mongo session context.
// Repositories use it to skip their own per-query timeouts inside a
// transaction; the transaction callback owns the deadline there.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.(mongo.SessionContext)
	return ok
}
