package messagequeue

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	natsConnectAttempts = 3
	natsPublishAttempts = 3
)

// NATSService implements the MessageQueue interface using core NATS subjects.
type NATSService struct {
	nc     *nats.Conn
	logger *zap.Logger
}

// NewNATSServiceConfig contains options for creating a new NATSService.
type NewNATSServiceConfig struct {
	URL  string
	Name string
}

// NewNATSService connects to NATS, retrying a few times before giving up.
func NewNATSService(ctx context.Context, cfg NewNATSServiceConfig, logger *zap.Logger) (*NATSService, error) {
	var (
		nc  *nats.Conn
		err error
	)
	for i := 0; i < natsConnectAttempts; i++ {
		nc, err = nats.Connect(cfg.URL,
			nats.Name(cfg.Name),
			nats.MaxReconnects(5),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("NATS disconnected", zap.Error(err))
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
			}),
		)
		if err == nil {
			logger.Info("Connected to NATS", zap.String("url", cfg.URL))
			return &NATSService{nc: nc, logger: logger}, nil
		}

		logger.Warn("Failed to connect to NATS", zap.Int("attempt", i+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("failed to connect to NATS after retries: %w", err)
}

// Publish sends body on subject and flushes, retrying transient failures.
func (s *NATSService) Publish(ctx context.Context, subject string, body []byte) error {
	var err error
	for i := 0; i < natsPublishAttempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = s.nc.Publish(subject, body); err != nil {
			s.logger.Warn("Failed to publish to NATS", zap.String("subject", subject), zap.Int("attempt", i+1), zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if err = s.nc.FlushTimeout(2 * time.Second); err != nil {
			s.logger.Warn("Failed to flush NATS connection", zap.Error(err))
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to publish to '%s' after retries: %w", subject, err)
}

// Consume joins a queue group named after subject so several notifiers share the load.
func (s *NATSService) Consume(ctx context.Context, subject string, handler Handler) error {
	sub, err := s.nc.QueueSubscribe(subject, subject, func(msg *nats.Msg) {
		if err := handler(ctx, msg.Data); err != nil {
			s.logger.Warn("Message handler failed", zap.String("subject", subject), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to '%s': %w", subject, err)
	}
	s.logger.Info("Waiting for messages", zap.String("subject", subject))

	<-ctx.Done()
	return sub.Unsubscribe()
}

// Close drains the connection.
func (s *NATSService) Close() error {
	if s.nc == nil || s.nc.IsClosed() {
		return nil
	}
	err := s.nc.Drain()
	s.logger.Info("NATS connection closed")
	return err
}
