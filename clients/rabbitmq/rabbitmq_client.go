package rabbitmq_client

import (
	"fmt"
	"os"

	"encoding/json"

	"moatmap/types"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

var (
	Connection *amqp.Connection
	Channel    *amqp.Channel
	Queue      amqp.Queue
)

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func Close() {
	if Channel != nil {
		Channel.Close()
	}
	if Connection != nil {
		Connection.Close()
	}
}

// SendFailure publishes a skipped-ticker alert to the failure queue.
func SendFailure(failure types.TickerFailure) {
	if Channel == nil {
		return
	}
	message, err := json.Marshal(failure)
	if err != nil {
		zap.L().Error("Error marshalling ticker failure", zap.Error(err))
		return
	}

	err = Channel.Publish(
		"",         // Exchange (empty means default)
		Queue.Name, // Routing key (queue name in this case)
		false,      // Mandatory
		false,      // Immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        message,
		})
	if err != nil {
		zap.L().Error("Error publishing message to rabbitmq: ", zap.Any("error", err.Error()))
		return
	}

	zap.L().Info("Published ticker failure", zap.String("ticker", failure.Ticker))
}

func init() {
	rabbitServer := os.Getenv("RABBITMQ_SERVER")
	if rabbitServer == "" {
		zap.L().Warn("RABBITMQ_SERVER not set, failure alerts disabled")
		return
	}
	rabbitPort := getEnv("RABBITMQ_PORT", "5672")
	rabbitUser := getEnv("RABBITMQ_USER", "guest")
	rabbitPass := getEnv("RABBITMQ_PASS", "guest")

	conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:%s/", rabbitUser, rabbitPass, rabbitServer, rabbitPort))
	if err != nil {
		zap.L().Error("RabbitMQ initialization failed: ", zap.Any("error", err.Error()))
		return
	}
	Connection = conn

	ch, err := Connection.Channel()
	if err != nil {
		zap.L().Error("RabbitMQ - Failed to open a channel: ", zap.Any("error", err.Error()))
		return
	}
	Channel = ch

	// Declare the queue so it exists before the first publish.
	queueName := getEnv("RABBITMQ_QUEUE", "moatmap-failures")
	q, err := ch.QueueDeclare(
		queueName, // Name of the queue
		true,      // Durable
		false,     // Delete when unused
		false,     // Exclusive
		false,     // No-wait
		nil,       // Arguments
	)
	if err != nil {
		zap.L().Error("RabbitMQ - Failed to declare a queue: ", zap.Any("error", err.Error()))
		return
	}
	Queue = q

	zap.L().Info("Connected to RabbitMQ.")
}
