package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	queueSize   = 1000
	workerCount = 10
)

// KafkaNotifier publishes events through a bounded queue drained by a
// worker pool, so request handlers never wait on the broker.
type KafkaNotifier struct {
	writer   *kafka.Writer
	topic    string
	events   chan Event
	shutdown chan struct{}
	wg       sync.WaitGroup
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	kn := &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		topic:    topic,
		events:   make(chan Event, queueSize),
		shutdown: make(chan struct{}),
	}
	for i := 0; i < workerCount; i++ {
		kn.wg.Add(1)
		go kn.worker(i)
	}
	return kn
}

func (kn *KafkaNotifier) worker(id int) {
	defer kn.wg.Done()
	for {
		select {
		case event := <-kn.events:
			if err := kn.send(event); err != nil {
				logrus.WithError(err).WithField("worker", id).Warn("failed to publish event")
			}
		case <-kn.shutdown:
			return
		}
	}
}

// Publish queues an event without blocking. A full queue drops the event.
func (kn *KafkaNotifier) Publish(event Event) error {
	select {
	case kn.events <- event:
		return nil
	default:
		return fmt.Errorf("event queue full, %s event dropped", event.Type)
	}
}

func (kn *KafkaNotifier) send(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Topic: kn.topic,
		Key:   []byte(event.TenantID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "tenant_id", Value: []byte(event.TenantID.String())},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := kn.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Close stops the workers and closes the writer. Queued events that no
// worker picked up before shutdown are dropped.
func (kn *KafkaNotifier) Close() error {
	close(kn.shutdown)
	kn.wg.Wait()
	return kn.writer.Close()
}
