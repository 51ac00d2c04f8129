// Package validation runs declared field rules against a request before its
// handler executes.
package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"example.com/reactivities/internal/mediator"
)

// Error lists every failed rule, grouped by field in declaration order.
type Error struct {
	Fields map[string][]string
	order  []string
}

// Add records one failed rule.
func (e *Error) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	if _, seen := e.Fields[field]; !seen {
		e.order = append(e.order, field)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no rule failed.
func (e *Error) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// FieldErrors returns the field name to messages mapping.
func (e *Error) FieldErrors() map[string][]string {
	return e.Fields
}

func (e *Error) Error() string {
	order := e.order
	if len(order) != len(e.Fields) {
		order = make([]string, 0, len(e.Fields))
		for field := range e.Fields {
			order = append(order, field)
		}
		sort.Strings(order)
	}
	parts := make([]string, 0, len(order))
	for _, field := range order {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type rule[T any] struct {
	field   string
	message string
	check   func(T) bool
}

// Validator holds the ordered rules for one request type.
type Validator[T any] struct {
	rules []rule[T]
}

// New returns an empty Validator.
func New[T any]() *Validator[T] {
	return &Validator[T]{}
}

// Must adds a rule that fails when check returns false.
func (v *Validator[T]) Must(field string, check func(T) bool, message string) *Validator[T] {
	v.rules = append(v.rules, rule[T]{field: field, message: message, check: check})
	return v
}

// NotEmpty fails when the selected string is blank.
func (v *Validator[T]) NotEmpty(field string, get func(T) string, message string) *Validator[T] {
	return v.Must(field, func(value T) bool {
		return strings.TrimSpace(get(value)) != ""
	}, message)
}

// MaxLength fails when the selected string is longer than max runes.
func (v *Validator[T]) MaxLength(field string, get func(T) string, max int, message string) *Validator[T] {
	return v.Must(field, func(value T) bool {
		return utf8.RuneCountInString(get(value)) <= max
	}, message)
}

// NotZeroTime fails when the selected time is unset.
func (v *Validator[T]) NotZeroTime(field string, get func(T) time.Time, message string) *Validator[T] {
	return v.Must(field, func(value T) bool {
		return !get(value).IsZero()
	}, message)
}

// Include appends the rules of other, reading its input through get.
func Include[T, U any](v *Validator[T], other *Validator[U], get func(T) U) *Validator[T] {
	for _, r := range other.rules {
		v.rules = append(v.rules, rule[T]{
			field:   r.field,
			message: r.message,
			check:   func(value T) bool { return r.check(get(value)) },
		})
	}
	return v
}

// Validate evaluates every rule and returns nil when all pass.
func (v *Validator[T]) Validate(value T) *Error {
	var failures Error
	for _, r := range v.rules {
		if !r.check(value) {
			failures.Add(r.field, r.message)
		}
	}
	if failures.Empty() {
		return nil
	}
	return &failures
}

// Registry maps request kinds to validators.
type Registry struct {
	validators map[mediator.Kind]func(mediator.Request) *Error
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[mediator.Kind]func(mediator.Request) *Error)}
}

// Register binds v to the kind of Req. A later registration replaces an earlier one.
func Register[Req mediator.Request](r *Registry, v *Validator[Req]) {
	var zero Req
	r.validators[zero.Kind()] = func(req mediator.Request) *Error {
		typed, ok := req.(Req)
		if !ok {
			return nil
		}
		return v.Validate(typed)
	}
}

// Validate runs the validator for req's kind, if any.
func (r *Registry) Validate(req mediator.Request) *Error {
	validate, ok := r.validators[req.Kind()]
	if !ok {
		return nil
	}
	return validate(req)
}

// Middleware stops the chain with a *Error when the request fails validation.
func Middleware(registry *Registry) mediator.Middleware {
	return func(next mediator.HandlerFunc) mediator.HandlerFunc {
		return func(ctx context.Context, req mediator.Request) (any, error) {
			if failures := registry.Validate(req); failures != nil {
				return nil, failures
			}
			return next(ctx, req)
		}
	}
}
