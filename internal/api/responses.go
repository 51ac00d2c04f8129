package api

import (
	"encoding/json"
	"net/http"

	"example.com/reactivities/internal/domain"
)

// ValidationProblem is the 400 body for rejected requests.
type ValidationProblem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail"`
	Errors map[string][]string `json:"errors"`
}

// ExceptionResponse is the 500 body for unexpected failures. Details carries
// the stack trace outside production.
type ExceptionResponse struct {
	StatusCode int     `json:"statusCode"`
	Message    string  `json:"message"`
	Details    *string `json:"details"`
}

func newValidationProblem(fields map[string][]string) ValidationProblem {
	return ValidationProblem{
		Type:   "ValidationFailure",
		Title:  "Validation Errors",
		Status: http.StatusBadRequest,
		Detail: "One or more validation errors occurred.",
		Errors: fields,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeResult translates a handler result into a response: 404 failures have
// an empty body, successes carrying a value are 200 JSON (a Unit value is an
// empty 200), and everything else is a 400 with the message as a JSON string.
func writeResult[T any](w http.ResponseWriter, res domain.Result[T]) {
	switch {
	case !res.IsSuccess() && res.Code() == http.StatusNotFound:
		w.WriteHeader(http.StatusNotFound)
	case res.HasValue():
		if _, unit := any(res.Value()).(domain.Unit); unit {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, http.StatusOK, res.Value())
	default:
		writeJSON(w, http.StatusBadRequest, res.Error())
	}
}
