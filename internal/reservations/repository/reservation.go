package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationserrors "reservd/internal/reservations/errors"
	"reservd/pkg/config"
	mongotx "reservd/pkg/db/mongo"
	"reservd/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "reservations"
)

// ReservationRepository is the booking ledger. Conflict reads and the
// insert they guard run inside ExecuteTransaction so no other writer can
// interleave between them.
type ReservationRepository interface {
	Create(ctx context.Context, rsv *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindAll(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context, businessID string) (int64, error)

	// FindConflicts returns the active reservations whose [start, end)
	// window overlaps the given one on (resource, date).
	FindConflicts(ctx context.Context, resourceID, date, startTime, endTime string) ([]*model.Reservation, error)

	// Search lists reservations for (resource, date), optionally narrowed
	// to a status set; an empty set means active statuses.
	Search(ctx context.Context, resourceID, date string, statuses []string) ([]*model.Reservation, error)

	UpdateStatus(ctx context.Context, id, status string) error

	// CompleteElapsed marks confirmed reservations completed once their
	// window ended at or before the cutoff. Returns how many rows changed.
	CompleteElapsed(ctx context.Context, cutoffDate, cutoffTime string) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with the query timeout unless the call
// is already inside a transaction, whose session context must not be
// wrapped, or carries a shorter deadline of its own.
func (r *mongoReservationRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if mongotx.InTransaction(ctx) {
		return ctx, func() {}
	}

	timeout := r.cfg.MongoQueryTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReservationRepository) Create(ctx context.Context, rsv *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if rsv.ID == "" {
		rsv.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	rsv.CreatedAt = now
	rsv.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, rsv); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	var rsv model.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rsv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return &rsv, nil
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if businessID != "" {
		filter["business_id"] = businessID
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

func (r *mongoReservationRepository) Count(ctx context.Context, businessID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if businessID != "" {
		filter["business_id"] = businessID
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) FindConflicts(ctx context.Context, resourceID, date, startTime, endTime string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	// Clocks are zero-padded HH:MM, so $lt/$gt on the strings is the
	// half-open interval overlap check.
	filter := bson.M{
		"resource_id": resourceID,
		"date":        date,
		"status":      bson.M{"$in": model.ActiveStatuses()},
		"start_time":  bson.M{"$lt": endTime},
		"end_time":    bson.M{"$gt": startTime},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query conflicting reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var conflicts []*model.Reservation
	if err = cursor.All(ctx, &conflicts); err != nil {
		return nil, fmt.Errorf("failed to decode conflicting reservations: %w", err)
	}
	return conflicts, nil
}

func (r *mongoReservationRepository) Search(ctx context.Context, resourceID, date string, statuses []string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if len(statuses) == 0 {
		statuses = model.ActiveStatuses()
	}
	filter := bson.M{
		"resource_id": resourceID,
		"date":        date,
		"status":      bson.M{"$in": statuses},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return reservations, nil
}

func (r *mongoReservationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoReservationRepository) CompleteElapsed(ctx context.Context, cutoffDate, cutoffTime string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"status": model.StatusConfirmed,
		"$or": bson.A{
			bson.M{"date": bson.M{"$lt": cutoffDate}},
			bson.M{"date": cutoffDate, "end_time": bson.M{"$lte": cutoffTime}},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     model.StatusCompleted,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to complete elapsed reservations: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
