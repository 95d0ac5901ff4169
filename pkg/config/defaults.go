package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "medbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
	LockBackendMongo  = "mongo"

	DefaultLockBackend = LockBackendMemory
	DefaultRedisAddr   = "127.0.0.1:6379"
	DefaultLockTTL     = 10 * time.Second
	DefaultLockWait    = 5 * time.Second

	DefaultReservationTimeout = 2 * time.Minute
	DefaultSweepSchedule      = "* * * * *"
	DefaultOutboxPollInterval = 500 * time.Millisecond
	DefaultOutboxBatchSize    = 100

	DefaultTopicSaga              = "booking.saga"
	DefaultTopicDoctorCommands    = "booking.doctor-commands"
	DefaultTopicAppointmentEvents = "booking.appointment-events"
	DefaultTopicDLQ               = "booking.dlq"
	DefaultConsumerGroupPrefix    = "medbook"

	DefaultAPIBaseURL = "http://localhost:8080"
)
