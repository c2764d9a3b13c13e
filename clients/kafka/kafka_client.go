package kafka_client

import (
	"encoding/json"
	"os"

	"moatmap/types"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

var (
	KafkaProducer *kafka.Producer
)

// SendRunEvent publishes a pipeline run summary to the configured topic.
func SendRunEvent(event types.MoatmapEvent) {
	if KafkaProducer == nil {
		return
	}
	topic := os.Getenv("KAFKA_TOPIC")
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("Error marshalling kafka event", zap.Error(err))
		return
	}

	zap.L().Sugar().Infof("Sending run event to kafka: %s", message)
	err = KafkaProducer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
	}, nil)
	if err != nil {
		zap.L().Error("Error sending message to kafka: ", zap.Any("error", err.Error()))
	}
}

func init() {
	bootstrap := os.Getenv("KAFKA_BOOTSTRAPSERVERS")
	if bootstrap == "" {
		zap.L().Warn("KAFKA_BOOTSTRAPSERVERS not set, run events disabled")
		return
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": bootstrap,
		"client.id":         "moatmapProducer",
		"acks":              "all",
	})
	if err != nil {
		zap.L().Error("Kafka Producer initialization failed: ", zap.Any("error", err.Error()))
		return
	}
	KafkaProducer = producer

	// Delivery report handler for produced messages
	go func() {
		for e := range KafkaProducer.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					zap.L().Error("Kafka Delivery failed: ", zap.Any("error", ev.TopicPartition.Error.Error()))
				} else {
					zap.L().Sugar().Infof("Delivered message to %s", *ev.TopicPartition.Topic)
				}
			}
		}
	}()

	zap.L().Info("Connected to Kafka", zap.String("bootstrap", bootstrap))
}
