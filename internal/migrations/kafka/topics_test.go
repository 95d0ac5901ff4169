package kafka

import (
	"testing"

	kafka_config "medbook/pkg/kafka/config"
)

func TestTopicSpecs_SkipsEmptyAndDuplicates(t *testing.T) {
	kcfg := &kafka_config.Config{TopicPartitions: 3, TopicReplicationFactor: 1}

	specs := TopicSpecs(kcfg, "booking.saga", "", "booking.doctor-commands", "booking.saga")
	if len(specs) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(specs))
	}
	if specs[0].Topic != "booking.saga" || specs[1].Topic != "booking.doctor-commands" {
		t.Errorf("unexpected topics %+v", specs)
	}
	if specs[0].NumPartitions != 3 || specs[0].ReplicationFactor != 1 {
		t.Errorf("unexpected sizing %+v", specs[0])
	}
}
