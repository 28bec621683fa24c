package locks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"reservd/pkg/config"
	"reservd/pkg/logger"
	"reservd/pkg/model"
)

const (
	lockCollection = "reservation_locks"

	// Release runs on its own context so a cancelled request still
	// frees the lease.
	releaseTimeout = 5 * time.Second
)

// MongoLocker implements the token as a lease document whose _id is the
// key. Inserting an existing _id fails with a duplicate-key error, which
// means the token is held. Leases carry an expiry: a waiter may steal one
// whose holder died, and the TTL index cleans up as a backstop.
type MongoLocker struct {
	collection *mongo.Collection
	ttl        time.Duration
	log        *logger.Logger
}

func NewMongoLocker(cfg *config.Config) *MongoLocker {
	return &MongoLocker{
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(lockCollection),
		ttl:        cfg.LockTTL,
		log:        cfg.Log.WithComponent("mongo_locker"),
	}
}

func (l *MongoLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	owner := uuid.NewString()
	now := time.Now().UTC()
	lease := &model.SlotLock{
		ID:        key,
		Owner:     owner,
		ExpiresAt: now.Add(l.ttl),
		CreatedAt: now,
	}

	_, err := l.collection.InsertOne(ctx, lease)
	switch {
	case err == nil:
	case mongo.IsDuplicateKeyError(err):
		// Held. Take over only if the current lease already expired.
		res := l.collection.FindOneAndReplace(ctx,
			bson.M{"_id": key, "expires_at": bson.M{"$lt": now}},
			lease,
		)
		if res.Err() != nil {
			if errors.Is(res.Err(), mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("key %s: %w", key, ErrNotAcquired)
			}
			return nil, fmt.Errorf("replace expired lease for %s: %w", key, res.Err())
		}
	default:
		return nil, fmt.Errorf("insert lease for %s: %w", key, err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()

			// Owner-scoped delete: if our lease expired and someone
			// else took the key over, their lease stays untouched.
			if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner}); err != nil {
				l.log.Error("Failed to release slot lock",
					"key", key,
					"owner", owner,
					"error", err,
				)
			}
		})
	}
	return release, nil
}
