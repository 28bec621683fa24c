package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	resourceserrors "reservd/internal/resources/errors"
	"reservd/pkg/config"
	mongotx "reservd/pkg/db/mongo"
	"reservd/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "resources"
)

type mongoResourceRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ResourceRepository interface {
	Create(ctx context.Context, res *model.Resource) error
	FindByID(ctx context.Context, id string) (*model.Resource, error)
	FindAll(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Resource, error)
	Count(ctx context.Context, businessID string) (int64, error)
	Update(ctx context.Context, id string, res *model.Resource) error
	Delete(ctx context.Context, id string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoResourceRepository(cfg *config.Config) ResourceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResourceRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with the query timeout unless the call
// is already inside a transaction, whose session context must not be
// wrapped, or carries a shorter deadline of its own.
func (r *mongoResourceRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
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

func (r *mongoResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	// IDs are generated as hex strings up front so reads decode the
	// same string type they wrote.
	if res.ID == "" {
		res.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	res.CreatedAt = now
	res.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, res); err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

func (r *mongoResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", resourceserrors.ErrInvalidID, id)
	}

	var res model.Resource
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", resourceserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}
	return &res, nil
}

func (r *mongoResourceRepository) FindAll(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Resource, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if businessID != "" {
		filter["business_id"] = businessID
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer cursor.Close(ctx)

	var resources []*model.Resource
	if err = cursor.All(ctx, &resources); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}

	return resources, nil
}

func (r *mongoResourceRepository) Count(ctx context.Context, businessID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if businessID != "" {
		filter["business_id"] = businessID
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}

func (r *mongoResourceRepository) Update(ctx context.Context, id string, res *model.Resource) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %s", resourceserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":         res.Name,
			"kind":         res.Kind,
			"time_zone":    res.TimeZone,
			"weekly_rules": res.WeeklyRules,
			"duration":     res.Duration,
			"lead_time":    res.LeadTime,
			"active":       res.Active,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", resourceserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoResourceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %s", resourceserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", resourceserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoResourceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
