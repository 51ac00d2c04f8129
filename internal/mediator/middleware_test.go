package mediator

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"example.com/reactivities/internal/observability"
)

type fakeResult struct {
	ok   bool
	code int
}

func (r fakeResult) IsSuccess() bool { return r.ok }
func (r fakeResult) Code() int       { return r.code }

type fakeFieldErr struct{}

func (fakeFieldErr) Error() string                    { return "invalid" }
func (fakeFieldErr) FieldErrors() map[string][]string { return map[string][]string{"id": {"required"}} }

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(fakeResult{ok: true}, nil))
	assert.Equal(t, "not_found", Outcome(fakeResult{code: 404}, nil))
	assert.Equal(t, "failed", Outcome(fakeResult{code: 400}, nil))
	assert.Equal(t, "error", Outcome(nil, errors.New("boom")))
	assert.Equal(t, "invalid", Outcome(nil, fakeFieldErr{}))
	assert.Equal(t, "success", Outcome([]string{}, nil))
}

func TestTracingRecordsSpanPerDispatch(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	handler := Chain(func(ctx context.Context, req Request) (any, error) {
		return nil, errors.New("store down")
	}, Tracing(tp.Tracer("test")))

	_, err := handler(context.Background(), listReq{})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "mediator.dispatch list_activities", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("request.outcome", "error"))
}

func TestLoggingWritesEntry(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	logger.SetOutput(io.Discard)

	handler := Chain(func(ctx context.Context, req Request) (any, error) {
		return fakeResult{code: 404}, nil
	}, Logging(logger))

	_, err := handler(context.Background(), getReq{ID: "x"})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "get_activity", entry.Data["kind"])
	assert.Equal(t, "not_found", entry.Data["outcome"])
}

func TestMetricsCountsOutcome(t *testing.T) {
	counter := observability.DispatchCount("delete_activity", "failed")
	before := testutil.ToFloat64(counter)

	handler := Chain(func(ctx context.Context, req Request) (any, error) {
		return fakeResult{code: 400}, nil
	}, Metrics())

	_, err := handler(context.Background(), deleteReq{ID: "x"})
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
