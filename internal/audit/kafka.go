package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	dErrors "veriflow/pkg/domain-errors"
)

// KafkaSink publishes audit events to a Kafka topic. Production is
// asynchronous; delivery failures are logged from the produce callback
// so a broker outage never stalls request handling.
type KafkaSink struct {
	client *kgo.Client
	logger *slog.Logger
}

func NewKafkaSink(brokers []string, topic string, logger *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "failed to connect to kafka", err)
	}
	return &KafkaSink{client: client, logger: logger}, nil
}

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to encode audit event", err)
	}

	// Key by subject so a consumer sees each subject's history in order.
	record := &kgo.Record{Key: []byte(event.SubjectID), Value: payload}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Warn("failed to publish audit event",
				"action", event.Action,
				"subject_id", event.SubjectID,
				"error", err)
		}
	})
	return nil
}

// Close flushes buffered records and releases the client.
func (s *KafkaSink) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Flush(ctx)
	s.client.Close()
}
