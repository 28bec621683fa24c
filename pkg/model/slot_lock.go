package model

import "time"

// SlotLock is the lease document backing the mongo lock backend. The key
// (resource id + date) is the _id, so a second insert for the same key
// fails with a duplicate-key error and the lock is known to be held.
// ExpiresAt lets a waiter steal a lease whose holder died; the TTL index
// on the collection is the backstop.
type SlotLock struct {
	ID        string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}
