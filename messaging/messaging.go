// Package messaging publishes dataset change events to RabbitMQ, so that other services (such as
// search indexers or notification workers) can react to dashboard changes.
package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"hermannm.dev/wrap"

	"github.com/brightboard/brightboard/config"
)

type ChangeTopic string

const (
	TopicDatasetCreated ChangeTopic = "dataset_created"
	TopicDatasetUpdated ChangeTopic = "dataset_updated"
	TopicDatasetDeleted ChangeTopic = "dataset_deleted"
)

var changeTopics = []ChangeTopic{
	TopicDatasetCreated,
	TopicDatasetUpdated,
	TopicDatasetDeleted,
}

// DatasetEvent is the message body published for every dataset change.
type DatasetEvent struct {
	DatasetID uuid.UUID `json:"datasetId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

type EventPublisher struct {
	connection  *amqp.Connection
	topicPrefix string
}

func NewEventPublisher(config config.Config) (*EventPublisher, error) {
	connection, err := amqp.DialConfig(config.RabbitMQ.URL, amqp.Config{
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		return nil, wrap.Error(err, "failed to connect to RabbitMQ")
	}

	publisher := &EventPublisher{connection: connection, topicPrefix: config.RabbitMQ.TopicPrefix}

	if err := publisher.declareTopics(); err != nil {
		connection.Close()
		return nil, wrap.Error(err, "failed to declare dataset change topics")
	}

	return publisher, nil
}

func (publisher *EventPublisher) declareTopics() error {
	channel, err := publisher.connection.Channel()
	if err != nil {
		return wrap.Error(err, "failed to open RabbitMQ channel")
	}
	defer channel.Close()

	for _, topic := range changeTopics {
		name := publisher.topicName(topic)

		if err := channel.ExchangeDeclare(
			name,    // name
			"topic", // type
			true,    // durable
			false,   // auto-delete
			false,   // internal
			false,   // noWait
			nil,     // arguments
		); err != nil {
			return wrap.Errorf(err, "exchange declaration failed for topic '%s'", name)
		}

		if _, err := channel.QueueDeclare(
			name,  // name of the queue
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // noWait
			nil,   // arguments
		); err != nil {
			return wrap.Errorf(err, "queue declaration failed for topic '%s'", name)
		}
	}

	return nil
}

func (publisher *EventPublisher) topicName(topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", publisher.topicPrefix, topic)
}

func (publisher *EventPublisher) Publish(topic ChangeTopic, event DatasetEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return wrap.Error(err, "failed to encode dataset event")
	}

	channel, err := publisher.connection.Channel()
	if err != nil {
		return wrap.Error(err, "failed to open RabbitMQ channel")
	}
	defer channel.Close()

	name := publisher.topicName(topic)
	if err := channel.Publish(
		name,
		name,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		return wrap.Errorf(err, "publish failed for topic '%s'", name)
	}

	return nil
}

func (publisher *EventPublisher) Close() error {
	return publisher.connection.Close()
}
