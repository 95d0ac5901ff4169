package saga

import (
	"context"
	"fmt"
	"time"

	"medbook/internal/booking/outbox"
	"medbook/pkg/config"
	mongostore "medbook/pkg/db/mongo"
	"medbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "booking_sagas"
	// FinalizedRetention is how long a Finalized record is kept before the TTL
	// index removes it.
	FinalizedRetention = 30 * 24 * time.Hour
)

// Store persists saga records. Load returns nil for an unknown correlation id.
// Commit writes the saga together with the outbox rows, all or nothing. With
// finalize set the record gets an expiry.
type Store interface {
	Load(ctx context.Context, correlationID string) (*model.BookingSaga, error)
	Commit(ctx context.Context, saga *model.BookingSaga, rows []model.OutboxMessage, finalize bool) error
	FindStuck(ctx context.Context, state model.SagaState, updatedBefore time.Time, limit int) ([]model.BookingSaga, error)
}

type mongoStore struct {
	cfg        *config.Config
	collection *mongo.Collection
	tx         mongostore.TransactionManager
	outbox     outbox.Repository
}

func NewMongoStore(cfg *config.Config, tx mongostore.TransactionManager, outboxRepo outbox.Repository) Store {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStore{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		tx:         tx,
		outbox:     outboxRepo,
	}
}

func (s *mongoStore) Load(ctx context.Context, correlationID string) (*model.BookingSaga, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var saga model.BookingSaga
	found, err := mongostore.FindByID(ctx, s.collection, correlationID, &saga)
	if err != nil {
		return nil, fmt.Errorf("failed to load saga: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &saga, nil
}

func (s *mongoStore) Commit(ctx context.Context, saga *model.BookingSaga, rows []model.OutboxMessage, finalize bool) error {
	expected := saga.Version
	doc := *saga
	doc.Version = expected + 1
	if finalize {
		doc.ExpiresAt = finalizedExpiry(doc.UpdatedAt)
	}

	err := s.tx.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := mongostore.ReplaceVersioned(sc, s.collection, saga.CorrelationID, expected, &doc); err != nil {
			return err
		}
		return s.outbox.Insert(sc, rows)
	})
	if err != nil {
		return fmt.Errorf("failed to commit saga: %w", err)
	}

	saga.Version = doc.Version
	saga.ExpiresAt = doc.ExpiresAt
	return nil
}

func finalizedExpiry(updatedAt time.Time) *time.Time {
	expires := updatedAt.Add(FinalizedRetention)
	return &expires
}

func (s *mongoStore) FindStuck(ctx context.Context, state model.SagaState, updatedBefore time.Time, limit int) ([]model.BookingSaga, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"current_state": state,
		"updated_at":    bson.M{"$lt": updatedBefore},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stuck sagas: %w", err)
	}
	defer cursor.Close(ctx)

	var sagas []model.BookingSaga
	if err := cursor.All(ctx, &sagas); err != nil {
		return nil, fmt.Errorf("failed to decode stuck sagas: %w", err)
	}
	return sagas, nil
}
