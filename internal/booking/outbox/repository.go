package outbox

import (
	"context"
	"fmt"
	"time"

	"medbook/pkg/config"
	mongostore "medbook/pkg/db/mongo"
	"medbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "outbox"
)

// Repository stores messages waiting to be published. Insert must honour a
// mongo.SessionContext so rows commit together with the saga state.
type Repository interface {
	Insert(ctx context.Context, messages []model.OutboxMessage) error
	FetchPending(ctx context.Context, limit int) ([]model.OutboxMessage, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	CountPending(ctx context.Context) (int64, error)
}

type mongoRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRepository(cfg *config.Config) Repository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

var pendingFilter = bson.M{"published_at": bson.M{"$exists": false}}

func (r *mongoRepository) Insert(ctx context.Context, messages []model.OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	docs := make([]any, len(messages))
	for i := range messages {
		docs[i] = messages[i]
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert outbox messages: %w", err)
	}
	return nil
}

func (r *mongoRepository) FetchPending(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, pendingFilter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []model.OutboxMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode outbox messages: %w", err)
	}
	return messages, nil
}

func (r *mongoRepository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"published_at": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message %s published: %w", id, err)
	}
	return nil
}

func (r *mongoRepository) CountPending(ctx context.Context) (int64, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, pendingFilter)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending outbox messages: %w", err)
	}
	return n, nil
}
