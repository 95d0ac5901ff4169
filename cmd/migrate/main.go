package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	kafkaMigration "medbook/internal/migrations/kafka"
	mongoMigration "medbook/internal/migrations/mongo"
	"medbook/pkg/app"
	"medbook/pkg/config"
)

const JobName = "migrate"

func main() {
	skipTopics := flag.Bool("skip-topics", false, "only migrate MongoDB")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting migration job", "database", cfg.Database(), "skip_topics", *skipTopics)
	migrateMongo(ctx, cfg)
	if !*skipTopics {
		migrateTopics(ctx, cfg)
	}
	fmt.Println("Migration completed successfully.")
}

func migrateMongo(ctx context.Context, cfg *config.Config) {
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.Database()); err != nil {
		cfg.Log.Fatal("Mongo migration failed", "error", err)
	}
}

func migrateTopics(ctx context.Context, cfg *config.Config) {
	kcfg := app.LoadKafka(cfg)
	specs := kafkaMigration.TopicSpecs(kcfg,
		cfg.Topics.Saga,
		cfg.Topics.DoctorCommands,
		cfg.Topics.AppointmentEvents,
		cfg.Topics.DeadLetter,
	)
	if err := kafkaMigration.EnsureTopics(ctx, kcfg, specs); err != nil {
		cfg.Log.Fatal("Topic migration failed", "error", err)
	}
}
