package kafka

import (
	"context"
	"encoding/json"
	"time"

	eventPort "socialfeed/internal/ports/event"

	kgo "github.com/segmentio/kafka-go"
)

// EventPublisherKafka writes post events to a single topic, keyed by post id
// so that events for one post stay ordered within a partition.
type EventPublisherKafka struct {
	w *kgo.Writer
}

func NewEventPublisherKafka(brokers []string, topic string) *EventPublisherKafka {
	return &EventPublisherKafka{
		w: &kgo.Writer{
			Addr:                   kgo.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kgo.Hash{},
			RequiredAcks:           kgo.RequireOne,
			BatchTimeout:           50 * time.Millisecond,
			WriteTimeout:           2 * time.Second,
			MaxAttempts:            3,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish blocks until the broker acknowledges ev or ctx ends.
func (p *EventPublisherKafka) Publish(ctx context.Context, ev eventPort.Event) error {
	msg, err := message(ev)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, msg)
}

func (p *EventPublisherKafka) Close() error {
	return p.w.Close()
}

func message(ev eventPort.Event) (kgo.Message, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return kgo.Message{}, err
	}
	return kgo.Message{
		Key:   []byte(ev.PostID),
		Value: b,
		Time:  ev.OccurredAt,
		Headers: []kgo.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}, nil
}
