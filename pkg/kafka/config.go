package kafka

import (
	"time"
)

// Config holds Kafka configuration
type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string

	// Producer settings
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack

	// TLS settings
	TLSEnabled bool
	TLSCert    string
	TLSKey     string
	TLSCA      string

	// SASL settings
	SASLEnabled   bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:       []string{"localhost:9092"},
		ConsumerGroup: "warehouse-core",
		ClientID:      "warehouse-core",

		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1, // All replicas

		TLSEnabled:  false,
		SASLEnabled: false,
	}
}

// Topics contains the Kafka topic names owned by this service
var Topics = struct {
	TaskEvents    string
	RoutingEvents string
	BatchEvents   string
}{
	TaskEvents:    "wms.task.events",
	RoutingEvents: "wms.routing.events",
	BatchEvents:   "wms.batch.events",
}

// TopicConfig holds configuration for a Kafka topic
type TopicConfig struct {
	Name              string
	Partitions        int
	ReplicationFactor int
	RetentionMs       int64
}

// DefaultTopicConfigs returns default configurations for the service's topics
func DefaultTopicConfigs() []TopicConfig {
	return []TopicConfig{
		{Name: Topics.TaskEvents, Partitions: 12, ReplicationFactor: 3, RetentionMs: 7 * 24 * 60 * 60 * 1000}, // 7 days
		{Name: Topics.RoutingEvents, Partitions: 6, ReplicationFactor: 3, RetentionMs: 7 * 24 * 60 * 60 * 1000},
		{Name: Topics.BatchEvents, Partitions: 6, ReplicationFactor: 3, RetentionMs: 7 * 24 * 60 * 60 * 1000},
	}
}

// TopicForEventType routes an event type to its owning topic
func TopicForEventType(eventType string) string {
	switch {
	case len(eventType) >= len("wms.routing.") && eventType[:len("wms.routing.")] == "wms.routing.":
		return Topics.RoutingEvents
	case len(eventType) >= len("wms.batch.") && eventType[:len("wms.batch.")] == "wms.batch.":
		return Topics.BatchEvents
	default:
		return Topics.TaskEvents
	}
}
