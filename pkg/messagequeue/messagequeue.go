package messagequeue

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Handler processes one message body. A returned error rejects the message.
type Handler func(ctx context.Context, body []byte) error

// MessageQueue defines the interface for message queue services.
type MessageQueue interface {
	Publish(ctx context.Context, queueName string, body []byte) error
	// Consume delivers messages of queueName to handler until ctx is cancelled.
	Consume(ctx context.Context, queueName string, handler Handler) error
	Close() error
}

// Driver names accepted by New.
const (
	DriverRabbitMQ = "rabbitmq"
	DriverNATS     = "nats"
)

// New connects to the broker selected by driver. An empty driver returns (nil, nil).
func New(ctx context.Context, driver, url string, logger *zap.Logger) (MessageQueue, error) {
	switch driver {
	case "":
		return nil, nil
	case DriverRabbitMQ:
		return NewRabbitMQService(NewRabbitMQServiceConfig{URL: url}, logger)
	case DriverNATS:
		return NewNATSService(ctx, NewNATSServiceConfig{URL: url, Name: "storefront"}, logger)
	default:
		return nil, fmt.Errorf("unknown message queue driver %q", driver)
	}
}
