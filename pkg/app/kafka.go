package app

import (
	"medbook/pkg/config"
	"medbook/pkg/kafka"
	kafka_config "medbook/pkg/kafka/config"
	kafka_middleware "medbook/pkg/kafka/middleware"
	"medbook/pkg/metrics"
)

// LoadKafka reads the broker settings from the environment and fails fast on a
// bad configuration.
func LoadKafka(cfg *config.Config) *kafka_config.Config {
	kcfg := kafka_config.Load()
	if err := kcfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kcfg.LogConfiguration(cfg.Log.KV)
	return kcfg
}

func NewProducer(cfg *config.Config, kcfg *kafka_config.Config, m *metrics.Metrics) *kafka.Producer {
	producer, err := kafka.NewProducer(kcfg, cfg.Topics.DeadLetter, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kcfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
	}
	return producer
}

// NewConsumer subscribes handler to topic under the prefixed consumer group.
func NewConsumer(cfg *config.Config, kcfg *kafka_config.Config, m *metrics.Metrics, topic, group string, handler kafka.MessageHandler) *kafka.Consumer {
	consumer, err := kafka.NewConsumer(kcfg, topic, cfg.ConsumerGroup(group), cfg.Topics.DeadLetter, handler, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "topic", topic, "group", group, "error", err)
	}
	if kcfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))
	}
	return consumer
}
