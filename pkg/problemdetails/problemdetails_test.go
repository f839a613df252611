package problemdetails

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{
			name:       "not found keeps reason",
			err:        errors.NotFound("WIDGET_NOT_FOUND", "widget not found"),
			wantStatus: http.StatusNotFound,
			wantType:   baseURI + "widget-not-found",
			wantDetail: "widget not found",
		},
		{
			name:       "unauthorized",
			err:        errors.Unauthorized("", "missing token"),
			wantStatus: http.StatusUnauthorized,
			wantType:   baseURI + TypeUnauthorized,
			wantDetail: "missing token",
		},
		{
			name:       "rate limit",
			err:        errors.New(http.StatusTooManyRequests, "RATELIMIT", "too many requests"),
			wantStatus: http.StatusTooManyRequests,
			wantType:   baseURI + TypeRateLimitExceeded,
			wantDetail: "too many requests",
		},
		{
			name:       "plain error is hidden",
			err:        stderrors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantType:   baseURI + TypeInternalError,
			wantDetail: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromError(tt.err)
			require.NotNil(t, p)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, tt.wantDetail, p.Detail)
		})
	}
}

func TestFromError_Validation(t *testing.T) {
	err := errors.BadRequest(ReasonValidation, "request validation failed").
		WithMetadata(map[string]string{"widgetId": "is required", "domain": "is required"})

	p := FromError(err)

	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, []FieldError{
		{Field: "domain", Message: "is required"},
		{Field: "widgetId", Message: "is required"},
	}, p.Errors)
}

func TestFromError_Nil(t *testing.T) {
	assert.Nil(t, FromError(nil))
}

func TestWrite(t *testing.T) {
	rr := httptest.NewRecorder()

	New(http.StatusNotFound, TypeNotFound, "Not Found", "nothing here").Write(rr)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ContentType, rr.Header().Get("Content-Type"))
	var body ProblemDetail
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "nothing here", body.Detail)
}
