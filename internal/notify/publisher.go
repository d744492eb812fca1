// Package notify carries order events between the API and the notifier worker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront-backend-go/internal/models"
	"storefront-backend-go/pkg/messagequeue"
)

// QueuePublisher publishes order events on a message queue.
type QueuePublisher struct {
	mq     messagequeue.MessageQueue
	queue  string
	logger *zap.Logger
}

// NewQueuePublisher creates a publisher writing to queue.
func NewQueuePublisher(mq messagequeue.MessageQueue, queue string, logger *zap.Logger) *QueuePublisher {
	return &QueuePublisher{mq: mq, queue: queue, logger: logger}
}

// NewOrderCreatedEvent projects an order to its event payload.
func NewOrderCreatedEvent(order *models.Order) models.OrderCreatedEvent {
	return models.OrderCreatedEvent{
		OrderID:   order.ID,
		OwnerID:   order.OwnerID,
		Email:     order.Email,
		Total:     order.Totals.Total,
		CreatedAt: order.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// PublishOrderCreated sends the order.created event for order.
func (p *QueuePublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(NewOrderCreatedEvent(order))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.mq.Publish(ctx, p.queue, data); err != nil {
		return fmt.Errorf("failed to publish order '%s': %w", order.ID, err)
	}
	p.logger.Info("published order.created", zap.String("orderID", order.ID), zap.String("queue", p.queue))
	return nil
}
