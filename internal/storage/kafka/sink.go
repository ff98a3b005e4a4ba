package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"betScope/internal/model"
)

// MessageWriter is the subset of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Sink publishes each bet as a JSON message keyed by bet id, so updates to
// one market stay on one partition.
type Sink struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
}

// NewWriter builds a kafka.Writer for brokers and topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
	}
}

func NewSink(writer MessageWriter, topic string, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{writer: writer, topic: topic, logger: logger}
}

// PutBetBatch implements storage.Storage.
func (s *Sink) PutBetBatch(ctx context.Context, bets []model.Bet) error {
	if len(bets) == 0 {
		return nil
	}
	now := time.Now()
	msgs := make([]kafka.Message, 0, len(bets))
	for _, bet := range bets {
		value, err := json.Marshal(bet)
		if err != nil {
			return fmt.Errorf("marshal bet %s: %w", bet.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(bet.ID),
			Value: value,
			Time:  now,
		})
	}

	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		s.logger.Error("failed to publish bets", zap.String("topic", s.topic), zap.Int("count", len(msgs)), zap.Error(err))
		return fmt.Errorf("kafka write %s: %w", s.topic, err)
	}
	s.logger.Debug("published bets", zap.String("topic", s.topic), zap.Int("count", len(msgs)))
	return nil
}

func (s *Sink) Close() error {
	return s.writer.Close()
}
