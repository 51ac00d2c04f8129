package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"example.com/reactivities/internal/outbox"
)

func activityMessage(eventType, id string, offset int64) kafka.Message {
	return kafka.Message{
		Topic:     "activity_events",
		Partition: 0,
		Offset:    offset,
		Time:      time.Now().UTC(),
		Key:       []byte(id),
		Value:     []byte(`{"activity_id":"` + id + `"}`),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "aggregate_id", Value: []byte(id)},
		},
	}
}

func newTestProcessor(reader Reader, handler Handler) *Processor {
	logger, _ := test.NewNullLogger()
	return NewProcessor(reader, handler, WithLogger(logger), WithRetry(3, time.Millisecond))
}

func TestProcessorCommitsOnSuccess(t *testing.T) {
	reader := &stubReader{messages: []kafka.Message{activityMessage(outbox.EventActivityCreated, "abc", 10)}}
	handler := &stubHandler{}

	err := newTestProcessor(reader, handler).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, outbox.EventActivityCreated, handler.last.EventType)
	require.Equal(t, "abc", handler.last.AggregateID)
	require.JSONEq(t, `{"activity_id":"abc"}`, string(handler.last.Payload))
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	reader := &stubReader{messages: []kafka.Message{activityMessage(outbox.EventActivityUpdated, "def", 20)}}
	handler := &stubHandler{err: errors.New("boom")}

	before := testutil.ToFloat64(handlerErrorCounter.WithLabelValues("activity_events", outbox.EventActivityUpdated))
	err := newTestProcessor(reader, handler).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 3, handler.calls, "every attempt is used before giving up")
	require.Equal(t, 0, reader.commitCalls)
	require.Equal(t, before+1, testutil.ToFloat64(handlerErrorCounter.WithLabelValues("activity_events", outbox.EventActivityUpdated)))
}

func TestProcessorRetriesTransientHandlerErrors(t *testing.T) {
	reader := &stubReader{messages: []kafka.Message{activityMessage(outbox.EventActivityDeleted, "ghi", 30)}}
	handler := &stubHandler{err: errors.New("redis down"), failures: 2}

	err := newTestProcessor(reader, handler).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 3, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
}

func TestProcessorStopsRetryingWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &stubReader{messages: []kafka.Message{activityMessage(outbox.EventActivityUpdated, "jkl", 40)}}
	handler := &stubHandler{err: errors.New("boom"), onCall: cancel}

	logger, _ := test.NewNullLogger()
	proc := NewProcessor(reader, handler, WithLogger(logger), WithRetry(5, time.Hour))

	err := proc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, handler.calls)
	require.Zero(t, reader.commitCalls)
}

func TestProcessorCommitsMalformedMessages(t *testing.T) {
	noType := activityMessage(outbox.EventActivityCreated, "x", 1)
	noType.Headers = nil
	badJSON := activityMessage(outbox.EventActivityCreated, "y", 2)
	badJSON.Value = []byte("{")

	reader := &stubReader{messages: []kafka.Message{noType, badJSON}}
	handler := &stubHandler{}

	err := newTestProcessor(reader, handler).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, handler.calls)
	require.Equal(t, 2, reader.commitCalls)
}

func TestDecodeFallsBackToKey(t *testing.T) {
	msg := activityMessage(outbox.EventActivityDeleted, "k-1", 3)
	msg.Headers = msg.Headers[:1]

	decoded, err := decodeMessage(msg)
	require.NoError(t, err)
	require.Equal(t, "k-1", decoded.AggregateID)
}

type stubEvictor struct {
	evicted []string
}

func (s *stubEvictor) Evict(_ context.Context, id string) error {
	s.evicted = append(s.evicted, id)
	return nil
}

func TestCacheInvalidatorEvictsActivityEvents(t *testing.T) {
	evictor := &stubEvictor{}
	invalidator := NewCacheInvalidator(evictor)
	ctx := context.Background()

	for _, eventType := range []string{outbox.EventActivityCreated, outbox.EventActivityUpdated, outbox.EventActivityDeleted, "activity.unknown"} {
		require.NoError(t, invalidator.Handle(ctx, Message{EventType: eventType, AggregateID: "a-1"}))
	}
	require.Equal(t, []string{"a-1", "a-1", "a-1"}, evictor.evicted)
}

type stubReader struct {
	messages    []kafka.Message
	index       int
	commitCalls int
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.index >= len(r.messages) {
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	r.commitCalls++
	return nil
}

func (r *stubReader) Close() error { return nil }

// stubHandler returns err on every call, or only on the first failures calls
// when failures is set.
type stubHandler struct {
	calls    int
	err      error
	failures int
	onCall   func()
	last     Message
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	if h.onCall != nil {
		h.onCall()
	}
	if h.failures > 0 && h.calls > h.failures {
		return nil
	}
	return h.err
}
