package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appointmentrepo "medbook/internal/appointments/repository"
	"medbook/internal/booking/outbox"
	"medbook/internal/booking/saga"
	doctorrepo "medbook/internal/doctors/repository"
	"medbook/internal/migrations/mongo/validators"
	notificationrepo "medbook/internal/notifications/repository"
	patientrepo "medbook/internal/patients/repository"
	"medbook/pkg/lock"
)

// PublishedOutboxRetention is how long relayed outbox rows are kept for inspection.
const PublishedOutboxRetention = 7 * 24 * time.Hour

var (
	DoctorsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "availability.id", Value: 1}}},
		{Keys: bson.D{{Key: "specialization", Value: 1}}},
	}

	AppointmentsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "appointment_time", Value: 1}}},
		{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "appointment_time", Value: 1}}},
		{Keys: bson.D{{Key: "correlation_id", Value: 1}}},
	}

	PatientsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "appointments", Value: 1}}},
	}

	SagasIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "current_state", Value: 1}, {Key: "updated_at", Value: 1}}},
		{Keys: bson.D{{Key: "appointment_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
		},
	}

	OutboxIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "published_at", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "published_at", Value: 1}},
			Options: options.Index().SetName("published_at_ttl").SetExpireAfterSeconds(int32(PublishedOutboxRetention.Seconds())),
		},
	}

	NotificationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "appointment_id", Value: 1}}},
	}

	LocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running medbook Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		doctorrepo.CollectionName: {
			Indexes:   DoctorsIndexes,
			Validator: validators.DoctorValidator,
		},
		appointmentrepo.CollectionName: {
			Indexes:   AppointmentsIndexes,
			Validator: validators.AppointmentValidator,
		},
		patientrepo.CollectionName: {
			Indexes:   PatientsIndexes,
			Validator: validators.PatientValidator,
		},
		saga.CollectionName: {
			Indexes:   SagasIndexes,
			Validator: validators.SagaValidator,
		},
		outbox.CollectionName: {
			Indexes:   OutboxIndexes,
			Validator: validators.OutboxValidator,
		},
		notificationrepo.CollectionName: {
			Indexes: NotificationsIndexes,
		},
		lock.LocksCollection: {
			Indexes: LocksIndexes,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

// ensureCollection creates the collection up front; multi-document transactions
// cannot create collections implicitly on older servers.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	fmt.Printf("ℹ️ Collection %s already exists, updating validator\n", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
