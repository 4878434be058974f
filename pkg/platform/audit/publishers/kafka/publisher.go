// Package kafka provides a Kafka-backed audit sink.
//
// Events are published as JSON keyed by canonical key, so all events for one
// key land in the same partition and consumers see them in order.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "namereg/pkg/platform/audit"
)

// Store publishes audit events to a Kafka topic. It implements audit.Store.
type Store struct {
	client *kgo.Client
	topic  string
}

// New connects to the given brokers and ensures the topic exists.
func New(brokers []string, topic string) (*Store, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	if err := ensureTopic(client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Store{client: client, topic: topic}, nil
}

func ensureTopic(client *kgo.Client, topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// payload is the JSON structure published to Kafka.
type payload struct {
	Action     string `json:"action"`
	Timestamp  string `json:"timestamp"`
	Key        string `json:"key"`
	Actor      string `json:"actor,omitempty"`
	Subject    string `json:"subject,omitempty"`
	ValidUntil string `json:"valid_until,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// Append publishes one event synchronously. A publish failure is returned to
// the caller; audit delivery is not fire-and-forget at this layer, the
// publisher decides whether to buffer.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	p := payload{
		Action:    event.Action,
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Key:       event.Key,
		RequestID: event.RequestID,
	}
	if !event.Actor.IsNil() {
		p.Actor = event.Actor.String()
	}
	if !event.Subject.IsNil() {
		p.Subject = event.Subject.String()
	}
	if !event.ValidUntil.IsZero() {
		p.ValidUntil = event.ValidUntil.Format(time.RFC3339Nano)
	}

	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Key),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (s *Store) Close() {
	s.client.Close()
}
