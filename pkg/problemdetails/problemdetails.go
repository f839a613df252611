// Package problemdetails renders RFC 7807 problem responses.
package problemdetails

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
)

const (
	TypeNotFound          = "not-found"
	TypeUnauthorized      = "unauthorized"
	TypeForbidden         = "forbidden"
	TypeRateLimitExceeded = "rate-limit-exceeded"
	TypeInternalError     = "internal-error"
	TypeValidationError   = "validation-error"
	TypeBadRequest        = "bad-request"

	// ReasonValidation marks a bad request carrying per-field messages in
	// its metadata.
	ReasonValidation = "VALIDATION_FAILED"

	ContentType = "application/problem+json"

	baseURI = "https://ambassador-tracker.dev/problems/"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ProblemDetail struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}

func New(status int, problemType, title, detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   fmt.Sprintf("%s%s", baseURI, problemType),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

func NewValidation(errors []FieldError) *ProblemDetail {
	return &ProblemDetail{
		Type:   fmt.Sprintf("%s%s", baseURI, TypeValidationError),
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Detail: "Request validation failed",
		Errors: errors,
	}
}

// FromError converts any error into a problem. Kratos errors keep their
// status and reason; anything else is an opaque internal error.
func FromError(err error) *ProblemDetail {
	kerr := errors.FromError(err)
	if kerr == nil {
		return nil
	}

	status := int(kerr.Code)
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}

	if kerr.Reason == ReasonValidation {
		fields := make([]FieldError, 0, len(kerr.Metadata))
		for f, msg := range kerr.Metadata {
			fields = append(fields, FieldError{Field: f, Message: msg})
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
		return NewValidation(fields)
	}

	if status >= http.StatusInternalServerError {
		return New(status, TypeInternalError, http.StatusText(status), "An unexpected error occurred")
	}
	return New(status, problemType(status, kerr.Reason), http.StatusText(status), kerr.Message)
}

func problemType(status int, reason string) string {
	switch {
	case status == http.StatusTooManyRequests:
		return TypeRateLimitExceeded
	case reason != "":
		return strings.ReplaceAll(strings.ToLower(reason), "_", "-")
	case status == http.StatusNotFound:
		return TypeNotFound
	case status == http.StatusUnauthorized:
		return TypeUnauthorized
	case status == http.StatusForbidden:
		return TypeForbidden
	default:
		return TypeBadRequest
	}
}

// Write encodes the problem as the response body.
func (p *ProblemDetail) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
