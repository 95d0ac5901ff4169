package main

import (
	"medbook/internal/booking/consumers"
	doctorrepo "medbook/internal/doctors/repository"
	doctorservice "medbook/internal/doctors/service"
	doctorvalidator "medbook/internal/doctors/validator"
	notificationrepo "medbook/internal/notifications/repository"
	patientrepo "medbook/internal/patients/repository"
	patientservice "medbook/internal/patients/service"
	patientvalidator "medbook/internal/patients/validator"
	"medbook/pkg/app"
	"medbook/pkg/config"
	"medbook/pkg/kafka"
	"medbook/pkg/metrics"
)

const (
	ServiceName        = "workers"
	doctorCommandGroup = "doctor-commands"
	registrarGroup     = "patient-registrar"
	notificationGroup  = "notification-recorder"
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
	patientService := patientservice.NewPatientService(
		patientrepo.NewMongoPatientRepository(cfg),
		patientvalidator.NewPatientValidator(),
		locker,
		cfg,
	)

	doctorCommands := consumers.NewDoctorCommandConsumer(doctorService, producer, cfg.Topics, ServiceName, cfg.Log)
	workers := []*kafka.Consumer{
		app.NewConsumer(cfg, kcfg, m, cfg.Topics.DoctorCommands, doctorCommandGroup, doctorCommands.Router().Handle),
		app.NewConsumer(cfg, kcfg, m, cfg.Topics.AppointmentEvents, registrarGroup, consumers.NewPatientRegistrar(patientService, cfg.Log).Handle),
		app.NewConsumer(cfg, kcfg, m, cfg.Topics.AppointmentEvents, notificationGroup,
			consumers.NewNotificationRecorder(notificationrepo.NewMongoNotificationRepository(cfg), cfg.Log).Handle),
	}

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, m, nil)
	for _, w := range workers {
		serverApp.AddWorkers(w)
		defer func(c *kafka.Consumer) {
			if err := c.Close(); err != nil {
				cfg.Log.Error("Failed to close consumer", "consumer", c.Name(), "error", err)
			}
		}(w)
	}

	cfg.Log.Info("Starting booking workers", "consumers", len(workers))
	serverApp.Run()
}
