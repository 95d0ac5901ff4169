package main

import (
	appointmentrepo "medbook/internal/appointments/repository"
	appointmentservice "medbook/internal/appointments/service"
	"medbook/internal/booking/consumers"
	"medbook/internal/booking/outbox"
	"medbook/internal/booking/saga"
	"medbook/internal/booking/sweeper"
	doctorrepo "medbook/internal/doctors/repository"
	doctorservice "medbook/internal/doctors/service"
	doctorvalidator "medbook/internal/doctors/validator"
	"medbook/pkg/app"
	"medbook/pkg/config"
	mongostore "medbook/pkg/db/mongo"
	"medbook/pkg/metrics"
)

const (
	ServiceName = "orchestrator"
	sagaGroup   = "saga"
)

func main() {
	cfg := config.Load(ServiceName)
	defer cfg.GracefulShutdown()

	cfg.SetMongo()

	m := metrics.NewDefault()
	kcfg := app.LoadKafka(cfg)
	producer := app.NewProducer(cfg, kcfg, m)
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}()

	locker := app.NewLocker(cfg)
	doctorService := doctorservice.NewDoctorService(
		doctorrepo.NewMongoDoctorRepository(cfg),
		doctorvalidator.NewDoctorValidator(),
		locker,
		m,
		cfg,
	)
	appointmentService := appointmentservice.NewAppointmentService(
		appointmentrepo.NewMongoAppointmentRepository(cfg),
		locker,
		cfg,
	)

	outboxRepo := outbox.NewMongoRepository(cfg)
	sagaStore := saga.NewMongoStore(cfg, mongostore.NewTransactionManager(cfg.Client.Mongo), outboxRepo)
	orchestrator := saga.NewOrchestrator(sagaStore, appointmentService, doctorService, locker, cfg.Topics, m, cfg.Log, ServiceName)

	sagaConsumer := app.NewConsumer(cfg, kcfg, m, cfg.Topics.Saga, sagaGroup, consumers.NewSagaRouter(orchestrator, cfg.Log).Handle)
	defer func() {
		if err := sagaConsumer.Close(); err != nil {
			cfg.Log.Error("Failed to close saga consumer", "error", err)
		}
	}()

	relay := outbox.NewRelay(outboxRepo, producer, m, cfg.Log, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	reservationSweeper := sweeper.New(sagaStore, producer, cfg.Topics, cfg.Log, cfg.SweepSchedule, cfg.ReservationTimeout, ServiceName)

	cfg.Log.Info("Starting saga orchestrator",
		"topic", cfg.Topics.Saga,
		"reservation_timeout", cfg.ReservationTimeout,
		"sweep_schedule", cfg.SweepSchedule,
	)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, m, nil)
	serverApp.AddWorkers(sagaConsumer, relay, reservationSweeper)
	serverApp.Run()
}
