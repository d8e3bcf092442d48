package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// readRetryDelay paces read attempts after a broker failure.
const readRetryDelay = time.Second

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// WelcomeConsumer feeds welcome events for newly enrolled members to a
// handler. Broker failures are retried with a delay; an undecodable message
// or a failed handler is logged and skipped, so one bad event cannot stall
// the stream.
type WelcomeConsumer struct {
	reader     messageReader
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewWelcomeConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *WelcomeConsumer {
	return &WelcomeConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		retryDelay: readRetryDelay,
		logger:     logger,
	}
}

func (c *WelcomeConsumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Run consumes until ctx is cancelled. It never gives up on its own: the
// welcome sweep only covers members still flagged unwelcomed on the next
// tick, so the stream has to outlive transient broker and database errors.
func (c *WelcomeConsumer) Run(ctx context.Context, handler func(context.Context, WelcomeEvent) error) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("read welcome event", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
			continue
		}

		var event WelcomeEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Warn("decode welcome event", zap.Error(err))
			continue
		}
		if err := handler(ctx, event); err != nil {
			c.logger.Error("handle welcome event",
				zap.String("member_number", event.MemberNumber),
				zap.Error(err))
		}
	}
}
