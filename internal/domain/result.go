package domain

import "reflect"

// Unit is the value carried by results of operations that return nothing.
type Unit struct{}

// Result is the outcome of an operation that can fail with a user-facing
// message and an HTTP-like status code. Exactly one of value or error is set.
type Result[T any] struct {
	ok    bool
	value T
	err   string
	code  int
}

// Success wraps a value.
func Success[T any](value T) Result[T] {
	return Result[T]{ok: true, value: value}
}

// Failure wraps an error message and status code.
func Failure[T any](message string, code int) Result[T] {
	return Result[T]{err: message, code: code}
}

// IsSuccess reports which variant is populated. Check it before Value.
func (r Result[T]) IsSuccess() bool { return r.ok }

// Value returns the success value, or the zero value for a failure.
func (r Result[T]) Value() T { return r.value }

// Error returns the failure message.
func (r Result[T]) Error() string { return r.err }

// Code returns the failure status code; zero for a success.
func (r Result[T]) Code() int { return r.code }

// HasValue reports whether the result is a success carrying a non-nil value.
func (r Result[T]) HasValue() bool {
	if !r.ok {
		return false
	}
	return !isNil(r.value)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
