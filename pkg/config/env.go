package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockBackend   = "LOCK_BACKEND"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvLockTTL       = "LOCK_TTL"
	EnvLockWait      = "LOCK_WAIT"

	EnvReservationTimeout = "RESERVATION_TIMEOUT"
	EnvSweepSchedule      = "SWEEP_SCHEDULE"
	EnvOutboxPollInterval = "OUTBOX_POLL_INTERVAL"
	EnvOutboxBatchSize    = "OUTBOX_BATCH_SIZE"

	EnvTopicSaga              = "TOPIC_SAGA"
	EnvTopicDoctorCommands    = "TOPIC_DOCTOR_COMMANDS"
	EnvTopicAppointmentEvents = "TOPIC_APPOINTMENT_EVENTS"
	EnvTopicDLQ               = "TOPIC_DLQ"
	EnvConsumerGroupPrefix    = "CONSUMER_GROUP_PREFIX"

	EnvAPIBaseURL = "API_BASE_URL"
)
