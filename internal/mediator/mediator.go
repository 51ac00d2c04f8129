// Package mediator routes typed requests to the single handler registered for
// their kind. The set of kinds is closed and Build refuses to produce a
// Mediator unless every kind has a handler.
package mediator

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoHandler is returned when a request kind has no registered handler.
	ErrNoHandler = errors.New("no handler registered for request kind")
	// ErrDuplicateHandler is returned by Build when a kind was registered twice.
	ErrDuplicateHandler = errors.New("handler already registered for request kind")
	// ErrRequestType is returned when a handler receives a request of the wrong type.
	ErrRequestType = errors.New("unexpected request type")
	// ErrResponseType is returned when a handler's response does not match the caller's expectation.
	ErrResponseType = errors.New("unexpected response type")
)

// Request is implemented by every request object. Kind must use a value receiver.
type Request interface {
	Kind() Kind
}

// HandlerFunc is the untyped form every handler and middleware shares.
type HandlerFunc func(ctx context.Context, req Request) (any, error)

// Middleware decorates a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// Builder collects handlers and middlewares at startup.
type Builder struct {
	handlers    map[Kind]HandlerFunc
	middlewares []Middleware
	errs        []error
}

// NewBuilder constructs an empty Builder.
func NewBuilder() *Builder {
	return &Builder{handlers: make(map[Kind]HandlerFunc)}
}

// Use appends middlewares. The first middleware added is the outermost.
func (b *Builder) Use(middlewares ...Middleware) *Builder {
	b.middlewares = append(b.middlewares, middlewares...)
	return b
}

// Register binds fn to the kind reported by the zero value of Req.
func Register[Req Request, Res any](b *Builder, fn func(context.Context, Req) (Res, error)) {
	var zero Req
	kind := zero.Kind()
	if _, exists := b.handlers[kind]; exists {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrDuplicateHandler, kind))
		return
	}
	b.handlers[kind] = func(ctx context.Context, req Request) (any, error) {
		typed, ok := req.(Req)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrRequestType, req, kind)
		}
		return fn(ctx, typed)
	}
}

// Build checks that every kind has exactly one handler and composes the
// middleware chain around each of them.
func (b *Builder) Build() (*Mediator, error) {
	errs := append([]error(nil), b.errs...)
	for _, kind := range Kinds() {
		if _, ok := b.handlers[kind]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoHandler, kind))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	chains := make(map[Kind]HandlerFunc, len(b.handlers))
	for kind, handler := range b.handlers {
		chains[kind] = Chain(handler, b.middlewares...)
	}
	return &Mediator{chains: chains}, nil
}

// Chain wraps fn so that middlewares[0] runs first.
func Chain(fn HandlerFunc, middlewares ...Middleware) HandlerFunc {
	wrapped := fn
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

// Mediator is immutable after Build and safe for concurrent use.
type Mediator struct {
	chains map[Kind]HandlerFunc
}

// Dispatch runs the chain registered for req's kind.
func (m *Mediator) Dispatch(ctx context.Context, req Request) (any, error) {
	chain, ok := m.chains[req.Kind()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, req.Kind())
	}
	return chain(ctx, req)
}

// Send dispatches req and asserts the response type.
func Send[Req Request, Res any](ctx context.Context, m *Mediator, req Req) (Res, error) {
	var zero Res
	out, err := m.Dispatch(ctx, req)
	if err != nil {
		return zero, err
	}
	res, ok := out.(Res)
	if !ok {
		return zero, fmt.Errorf("%w: got %T for %s", ErrResponseType, out, req.Kind())
	}
	return res, nil
}
