// Package outbox persists and delivers activity events to Kafka.
package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Queue is the durable side of the outbox.
type Queue interface {
	Claim(ctx context.Context, limit int) ([]Message, error)
	MarkPublished(ctx context.Context, ids []int64) error
	Release(ctx context.Context, ids []int64) error
}

// Dispatcher drains the outbox and publishes events to one Kafka topic.
type Dispatcher struct {
	queue            Queue
	producer         messageWriter
	topic            string
	pollInterval     time.Duration
	batchSize        int
	logger           log.FieldLogger
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(queue Queue, producer messageWriter, topic string, pollInterval time.Duration, batchSize int, logger log.FieldLogger) *Dispatcher {
	return &Dispatcher{
		queue:            queue,
		producer:         producer,
		topic:            topic,
		pollInterval:     pollInterval,
		batchSize:        batchSize,
		logger:           logger.WithField("component", "outbox"),
		shutdownComplete: make(chan struct{}),
	}
}

// Start launches the polling loop. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if _, err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.WithError(err).Error("outbox dispatcher error")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait blocks until the polling loop has stopped.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

// processBatch publishes one batch and returns how many events were delivered.
func (d *Dispatcher) processBatch(ctx context.Context) (int, error) {
	start := time.Now()

	messages, err := d.queue.Claim(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	ids := make([]int64, 0, len(messages))
	records := make([]kafka.Message, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.EventID)
		records = append(records, toRecord(msg))
	}

	if err := d.producer.WriteMessages(ctx, d.topic, records...); err != nil {
		d.logger.WithError(err).WithField("events", len(messages)).Warn("outbox delivery failed, releasing claim")
		failedCounter.Add(float64(len(messages)))
		if releaseErr := d.queue.Release(ctx, ids); releaseErr != nil {
			return 0, releaseErr
		}
		return 0, err
	}

	deliveredCounter.Add(float64(len(messages)))
	return len(messages), d.queue.MarkPublished(ctx, ids)
}

func toRecord(msg Message) kafka.Message {
	return kafka.Message{
		Key:   []byte(msg.AggregateID),
		Value: []byte(msg.Payload),
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(msg.EventType)},
			{Key: "aggregate_id", Value: []byte(msg.AggregateID)},
		},
	}
}
