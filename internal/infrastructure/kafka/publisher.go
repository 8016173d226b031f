// Package kafkapub publishes committed balance changes.
package kafkapub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fxledger-service/internal/domain"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const eventTypeBalanceToppedUp = "balance.topped_up"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes one message per event, keyed by user id so a user's events
// stay ordered within a partition.
type Publisher struct {
	w   messageWriter
	log *zap.Logger
}

func NewPublisher(brokers []string, topic string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Warn(fmt.Sprintf(msg, args...))
		}),
	}
	log.Info("kafka writer initialized", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return &Publisher{w: w, log: log}
}

func encode(ev domain.BalanceEvent) (kafka.Message, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode balance event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(ev.UserID),
		Value: b,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventTypeBalanceToppedUp)},
			{Key: "event-id", Value: []byte(ev.ID)},
		},
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, ev domain.BalanceEvent) error {
	msg, err := encode(ev)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error { return p.w.Close() }

// LogPublisher stands in for Kafka when no brokers are configured.
type LogPublisher struct {
	Log *zap.Logger
}

func (p LogPublisher) Publish(_ context.Context, ev domain.BalanceEvent) error {
	p.Log.Info("balance_event",
		zap.String("event_id", ev.ID),
		zap.String("user_id", ev.UserID),
		zap.String("currency", ev.Currency),
		zap.String("amount", ev.Amount.String()),
		zap.String("balance", ev.Balance.String()),
	)
	return nil
}

func (LogPublisher) Close() error { return nil }
