package mediator

import (
	"context"
	"errors"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"example.com/reactivities/internal/observability"
)

// outcomeReporter is satisfied by domain.Result values.
type outcomeReporter interface {
	IsSuccess() bool
	Code() int
}

// fieldErrorer is satisfied by validation failures.
type fieldErrorer interface {
	FieldErrors() map[string][]string
}

// Outcome classifies a handler response for logs and metrics.
func Outcome(out any, err error) string {
	if err != nil {
		var fe fieldErrorer
		if errors.As(err, &fe) {
			return "invalid"
		}
		return "error"
	}
	res, ok := out.(outcomeReporter)
	if !ok || res.IsSuccess() {
		return "success"
	}
	if res.Code() == 404 {
		return "not_found"
	}
	return "failed"
}

// Tracing opens one span per dispatch.
func Tracing(tracer trace.Tracer) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (any, error) {
			ctx, span := tracer.Start(ctx, "mediator.dispatch "+req.Kind().String(),
				trace.WithAttributes(attribute.String("request.kind", req.Kind().String())))
			defer span.End()

			out, err := next(ctx, req)
			outcome := Outcome(out, err)
			span.SetAttributes(attribute.String("request.outcome", outcome))
			if res, ok := out.(outcomeReporter); ok && !res.IsSuccess() {
				span.SetAttributes(attribute.String("result.code", strconv.Itoa(res.Code())))
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return out, err
		}
	}
}

// Logging writes one entry per dispatch.
func Logging(logger log.FieldLogger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (any, error) {
			start := time.Now()
			out, err := next(ctx, req)

			entry := logger.WithFields(log.Fields{
				"kind":     req.Kind().String(),
				"outcome":  Outcome(out, err),
				"duration": time.Since(start),
			})
			if err != nil {
				entry.WithError(err).Debug("request dispatched")
			} else {
				entry.Debug("request dispatched")
			}
			return out, err
		}
	}
}

// Metrics records a Prometheus sample per dispatch.
func Metrics() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (any, error) {
			start := time.Now()
			out, err := next(ctx, req)
			observability.RecordDispatch(req.Kind().String(), Outcome(out, err), time.Since(start))
			return out, err
		}
	}
}
