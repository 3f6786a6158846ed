// Package events publishes cart and session changes to Kafka for downstream
// consumers. The producer is optional; without configured brokers nothing is
// wired.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicCart  = "cart_events"
	TopicUser  = "user_events"
	TopicOrder = "order_events"
)

type Event struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

type Producer struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewProducer(brokers []string, log *slog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w, log: log}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// PublishAsync fires from an observer callback without blocking the store
// mutation that triggered it.
func (p *Producer) PublishAsync(topic, key string, event Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, topic, key, event); err != nil {
			p.log.Warn("event_publish_failed", "topic", topic, "error", err)
		}
	}()
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
