package main

import (
	appointmenthandler "medbook/internal/appointments/handler"
	appointmentrepo "medbook/internal/appointments/repository"
	appointmentservice "medbook/internal/appointments/service"
	bookinghandler "medbook/internal/booking/handler"
	"medbook/internal/booking/outbox"
	"medbook/internal/booking/saga"
	bookingservice "medbook/internal/booking/service"
	bookingvalidator "medbook/internal/booking/validator"
	doctorhandler "medbook/internal/doctors/handler"
	doctorrepo "medbook/internal/doctors/repository"
	doctorservice "medbook/internal/doctors/service"
	doctorvalidator "medbook/internal/doctors/validator"
	notificationhandler "medbook/internal/notifications/handler"
	notificationrepo "medbook/internal/notifications/repository"
	patienthandler "medbook/internal/patients/handler"
	patientrepo "medbook/internal/patients/repository"
	patientservice "medbook/internal/patients/service"
	patientvalidator "medbook/internal/patients/validator"
	"medbook/pkg/app"
	"medbook/pkg/config"
	"medbook/pkg/contracts"
	"medbook/pkg/kafka"
	mongostore "medbook/pkg/db/mongo"
	"medbook/pkg/metrics"
)

const ServiceName = "api"

func main() {
	cfg := config.Load(ServiceName)
	defer cfg.GracefulShutdown()

	cfg.SetMongo()

	m := metrics.NewDefault()
	producer := app.NewProducer(cfg, app.LoadKafka(cfg), m)
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}()

	cfg.Log.Info("Starting API service")
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, m, initHandlers(cfg, m, producer))
	serverApp.Run()
}

func initHandlers(cfg *config.Config, m *metrics.Metrics, publisher kafka.Publisher) contracts.Handler {
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
	patientService := patientservice.NewPatientService(
		patientrepo.NewMongoPatientRepository(cfg),
		patientvalidator.NewPatientValidator(),
		locker,
		cfg,
	)

	sagaStore := saga.NewMongoStore(cfg, mongostore.NewTransactionManager(cfg.Client.Mongo), outbox.NewMongoRepository(cfg))
	bookingService := bookingservice.NewBookingService(
		sagaStore,
		publisher,
		bookingvalidator.NewBookingValidator(),
		cfg,
		ServiceName,
	)

	cfg.Log.Info("API services initialized", "database", cfg.Database())
	return app.Handlers{
		doctorhandler.NewDoctorHandler(doctorService, cfg.Log),
		patienthandler.NewPatientHandler(patientService, cfg.Log),
		appointmenthandler.NewAppointmentHandler(appointmentService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		notificationhandler.NewNotificationHandler(notificationrepo.NewMongoNotificationRepository(cfg), cfg.Log),
	}
}
