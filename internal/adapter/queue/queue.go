package queue

import (
	"fmt"

	"go.uber.org/zap"
)

// Subjects used by the intent detection pipeline.
const (
	SubjectUtterances = "nlu.utterances"
	SubjectDetections = "nlu.detections"
	SubjectReview     = "nlu.review"
)

// MessageQueue is the publish/subscribe surface shared by the NATS and RabbitMQ adapters.
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

// Pinger is implemented by adapters that can report connection health.
type Pinger interface {
	Ping() error
}

// New connects to the broker selected by driver ("nats" or "rabbitmq").
func New(driver, url string, log *zap.Logger) (MessageQueue, error) {
	switch driver {
	case "", "nats":
		return NewNATSQueue(url, log)
	case "rabbitmq":
		return NewRabbitMQQueue(url, log)
	default:
		return nil, fmt.Errorf("unknown queue driver %q", driver)
	}
}
