package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LocksCollection  = "locks"
	mongoPollBackoff = 50 * time.Millisecond
)

type lockDocument struct {
	Key       string    `bson:"_id"`
	Token     string    `bson:"token"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// MongoLocker keeps advisory locks as documents keyed by the lock key. The unique
// _id makes a second insert fail while the lock is held; a TTL index on expires_at
// reaps locks whose owner died.
type MongoLocker struct {
	collection *mongo.Collection
	ttl        time.Duration
	wait       time.Duration
}

func NewMongoLocker(db *mongo.Database, ttl, wait time.Duration) *MongoLocker {
	return &MongoLocker{
		collection: db.Collection(LocksCollection),
		ttl:        ttl,
		wait:       wait,
	}
}

func (l *MongoLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, _ = l.collection.DeleteOne(releaseCtx, bson.M{"_id": key, "token": token})
	}()

	fnCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(fnCtx)
}

func (l *MongoLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)
	for {
		now := time.Now()
		// Expired locks are removed eagerly; the TTL monitor only runs once a minute.
		_, _ = l.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lt": now}})

		_, err := l.collection.InsertOne(ctx, lockDocument{
			Key:       key,
			Token:     token,
			CreatedAt: now,
			ExpiresAt: now.Add(l.ttl),
		})
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(mongoPollBackoff):
		}
	}
}
