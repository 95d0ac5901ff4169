package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	kafka_config "medbook/pkg/kafka/config"

	"github.com/segmentio/kafka-go"
)

// TopicSpecs builds the topic list for the configured names. Empty names are
// skipped so an unset dead letter topic is not created.
func TopicSpecs(kcfg *kafka_config.Config, names ...string) []kafka.TopicConfig {
	specs := make([]kafka.TopicConfig, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		specs = append(specs, kafka.TopicConfig{
			Topic:             name,
			NumPartitions:     kcfg.TopicPartitions,
			ReplicationFactor: kcfg.TopicReplicationFactor,
		})
	}
	return specs
}

// EnsureTopics creates the topics on the cluster controller. Topics that
// already exist are left untouched.
func EnsureTopics(ctx context.Context, kcfg *kafka_config.Config, specs []kafka.TopicConfig) error {
	if len(specs) == 0 {
		return nil
	}
	dialer := &kafka.Dialer{ClientID: kcfg.ClientID, Timeout: kcfg.DialTimeout, DualStack: true}

	conn, err := dialer.DialContext(ctx, "tcp", kcfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker %s: %w", kcfg.Brokers[0], err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}
	controllerAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))

	ctrlConn, err := dialer.DialContext(ctx, "tcp", controllerAddr)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", controllerAddr, err)
	}
	defer ctrlConn.Close()

	for _, spec := range specs {
		fmt.Printf("📨 Ensuring topic '%s' (%d partitions)...\n", spec.Topic, spec.NumPartitions)
		if err := ctrlConn.CreateTopics(spec); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", spec.Topic, err)
		}
	}
	return nil
}
