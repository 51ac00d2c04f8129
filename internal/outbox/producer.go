package outbox

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// KafkaProducer publishes outbox records through one shared writer. The topic
// travels on each message; records are partitioned by key so events for one
// activity stay ordered.
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer. Broker errors are reported to
// logger.
func NewKafkaProducer(brokers []string, logger log.FieldLogger) *KafkaProducer {
	errLog := logger.WithField("component", "kafka-writer")
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			BatchTimeout: 50 * time.Millisecond,
			ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
				errLog.Errorf(msg, args...)
			}),
		},
	}
}

// WriteMessages publishes msgs to topic and blocks until every record is
// acknowledged.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	for i := range msgs {
		msgs[i].Topic = topic
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

// Close flushes pending writes and releases connections.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
