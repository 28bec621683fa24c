package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	calendarserrors "reservd/internal/calendars/errors"
	"reservd/pkg/config"
	mongotx "reservd/pkg/db/mongo"
	"reservd/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "calendar_overrides"
)

type mongoOverrideRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type OverrideRepository interface {
	Upsert(ctx context.Context, ov *model.CalendarOverride) error
	FindByResourceAndDate(ctx context.Context, resourceID, date string) (*model.CalendarOverride, error)
	FindAllForResource(ctx context.Context, resourceID, from, to string) ([]*model.CalendarOverride, error)
	Delete(ctx context.Context, resourceID, date string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoOverrideRepository(cfg *config.Config) OverrideRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOverrideRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with the query timeout unless the call
// is already inside a transaction, whose session context must not be
// wrapped, or carries a shorter deadline of its own.
func (r *mongoOverrideRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
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

// Upsert writes the single override for (resource, date). The unique
// index on that pair turns concurrent upserts into last-write-wins
// instead of duplicates.
func (r *mongoOverrideRepository) Upsert(ctx context.Context, ov *model.CalendarOverride) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	ov.UpdatedAt = now

	filter := bson.M{"resource_id": ov.ResourceID, "date": ov.Date}
	update := bson.M{
		"$set": bson.M{
			"closed":     ov.Closed,
			"open":       ov.Open,
			"close":      ov.Close,
			"reason":     ov.Reason,
			"updated_at": ov.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":         primitive.NewObjectID().Hex(),
			"resource_id": ov.ResourceID,
			"date":        ov.Date,
			"created_at":  now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert calendar override: %w", err)
	}

	var saved model.CalendarOverride
	if err := r.collection.FindOne(ctx, filter).Decode(&saved); err != nil {
		return fmt.Errorf("failed to read back calendar override: %w", err)
	}
	*ov = saved
	return nil
}

func (r *mongoOverrideRepository) FindByResourceAndDate(ctx context.Context, resourceID, date string) (*model.CalendarOverride, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"resource_id": resourceID, "date": date}

	var ov model.CalendarOverride
	err := r.collection.FindOne(ctx, filter).Decode(&ov)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s %s", calendarserrors.ErrNotFound, resourceID, date)
		}
		return nil, fmt.Errorf("failed to find calendar override: %w", err)
	}
	return &ov, nil
}

func (r *mongoOverrideRepository) FindAllForResource(ctx context.Context, resourceID, from, to string) ([]*model.CalendarOverride, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"resource_id": resourceID}
	// Dates are zero-padded YYYY-MM-DD, so string comparison is date
	// comparison.
	dateRange := bson.M{}
	if from != "" {
		dateRange["$gte"] = from
	}
	if to != "" {
		dateRange["$lte"] = to
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar overrides: %w", err)
	}
	defer cursor.Close(ctx)

	var overrides []*model.CalendarOverride
	if err = cursor.All(ctx, &overrides); err != nil {
		return nil, fmt.Errorf("failed to decode calendar overrides: %w", err)
	}
	return overrides, nil
}

func (r *mongoOverrideRepository) Delete(ctx context.Context, resourceID, date string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"resource_id": resourceID, "date": date}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete calendar override: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s %s", calendarserrors.ErrNotFound, resourceID, date)
	}
	return nil
}

func (r *mongoOverrideRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
