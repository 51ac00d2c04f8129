package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"example.com/reactivities/internal/auth"
)

type fieldErrorer interface {
	error
	FieldErrors() map[string][]string
}

// bodyError reports a request body that could not be decoded.
type bodyError struct {
	cause error
}

func (e bodyError) Error() string { return "invalid request body: " + e.cause.Error() }

func (e bodyError) Unwrap() error { return e.cause }

func (e bodyError) FieldErrors() map[string][]string {
	return map[string][]string{"body": {e.cause.Error()}}
}

// errorWriter turns handler errors and panics into responses.
type errorWriter struct {
	logger     log.FieldLogger
	production bool
}

func (ew errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	var invalid fieldErrorer
	if errors.As(err, &invalid) {
		writeJSON(w, http.StatusBadRequest, newValidationProblem(invalid.FieldErrors()))
		return
	}

	ew.requestLog(r).WithError(err).Error("request failed")
	// %+v prints the stack recorded by github.com/pkg/errors when present.
	ew.exception(w, err.Error(), fmt.Sprintf("%+v", err))
}

// requestLog tags entries with the request id and, behind auth, the caller.
func (ew errorWriter) requestLog(r *http.Request) log.FieldLogger {
	fields := log.Fields{"request_id": chimiddleware.GetReqID(r.Context())}
	if claims, ok := auth.FromContext(r.Context()); ok && claims != nil {
		fields["subject"] = claims.Subject
	}
	return ew.logger.WithFields(fields)
}

func (ew errorWriter) exception(w http.ResponseWriter, message, stack string) {
	body := ExceptionResponse{StatusCode: http.StatusInternalServerError, Message: message}
	if !ew.production {
		body.Details = &stack
	}
	writeJSON(w, http.StatusInternalServerError, body)
}

// recoverer converts panics into the 500 exception body.
func (ew errorWriter) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			stack := string(debug.Stack())
			ew.requestLog(r).WithField("panic", rvr).
				Error("panic while serving request")
			ew.exception(w, fmt.Sprint(rvr), stack)
		}()
		next.ServeHTTP(w, r)
	})
}
