package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/mfigueroa/spotter/internal/model"
)

const writeTimeout = 5 * time.Second

// promisingEvent is the wire shape of one promising-request notification.
type promisingEvent struct {
	UserID         string               `json:"user_id"`
	NotifiedAt     time.Time            `json:"notified_at"`
	FundingRequest model.FundingRequest `json:"funding_request"`
}

// Publisher sends promising funding requests to Kafka, one message per
// user/request pair, keyed by user so a consumer sees each user's
// notifications in order.
type Publisher struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

func NewPublisher(broker, topic string, logger *logrus.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Publisher{writer: writer, logger: logger}
}

// PublishPromising emits one notification for a user/request pair.
func (p *Publisher) PublishPromising(ctx context.Context, userID string, request model.FundingRequest) error {
	event := promisingEvent{
		UserID:         userID,
		NotifiedAt:     time.Now().UTC(),
		FundingRequest: request,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(userID),
		Value: data,
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("kafka write failed: %w", err)
	}

	p.logger.Debugf("Published funding request %d for user %s", request.ID, userID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
