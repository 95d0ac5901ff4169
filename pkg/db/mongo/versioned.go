package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrVersionConflict means another writer changed the document between our read
// and our write. The caller reloads and retries.
var ErrVersionConflict = errors.New("version conflict")

// FindByID decodes the document with the given _id into out. It reports false,
// with no error, when the document does not exist.
func FindByID(ctx context.Context, coll *mongo.Collection, id string, out any) (bool, error) {
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("find %s/%s: %w", coll.Name(), id, err)
	}
	return true, nil
}

// ReplaceVersioned stores doc if the stored version still equals expected. doc
// must already carry version expected+1. Version 0 means the document must not
// exist yet.
func ReplaceVersioned(ctx context.Context, coll *mongo.Collection, id string, expected int64, doc any) error {
	if expected == 0 {
		_, err := coll.InsertOne(ctx, doc)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: %s/%s", ErrVersionConflict, coll.Name(), id)
			}
			return fmt.Errorf("insert %s/%s: %w", coll.Name(), id, err)
		}
		return nil
	}

	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id, "version": expected}, doc)
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", coll.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s/%s at version %d", ErrVersionConflict, coll.Name(), id, expected)
	}
	return nil
}

// DeleteVersioned removes the document if the stored version equals expected.
// Deleting a document that never existed is a no-op.
func DeleteVersioned(ctx context.Context, coll *mongo.Collection, id string, expected int64) error {
	if expected == 0 {
		return nil
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id, "version": expected})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", coll.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s/%s at version %d", ErrVersionConflict, coll.Name(), id, expected)
	}
	return nil
}

// WithTimeout bounds ctx by timeout unless it is a session context; wrapping a
// SessionContext would detach the operation from its transaction.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}
	return context.WithTimeout(ctx, timeout)
}
