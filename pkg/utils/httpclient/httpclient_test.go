package httpclient_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uwtools/go-bridge/pkg/utils/httpclient"
)

func newResponse(status int, body string) *http.Response {
	rec := httptest.NewRecorder()
	rec.WriteHeader(status)

	resp := rec.Result()
	resp.Body = io.NopCloser(strings.NewReader(body))

	return resp
}

func TestReadBody(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		expected      []int
		expectError   bool
		errorContains string
	}{
		{
			name:     "Expected status",
			status:   http.StatusOK,
			body:     `{"users":[]}`,
			expected: []int{http.StatusOK},
		},
		{
			name:     "Second expected status",
			status:   http.StatusCreated,
			body:     `{"users":[]}`,
			expected: []int{http.StatusOK, http.StatusCreated},
		},
		{
			name:          "Unexpected status",
			status:        http.StatusBadRequest,
			body:          `{"error":"bad"}`,
			expected:      []int{http.StatusOK},
			expectError:   true,
			errorContains: "returned 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newResponse(tt.status, tt.body)

			body, err := httpclient.ReadBody(resp, http.MethodGet, "/api/author/users", tt.expected...)

			if tt.expectError {
				assert.Error(t, err)
				assert.ErrorIs(t, err, httpclient.ErrUnexpectedStatusCode)
				assert.Contains(t, err.Error(), tt.errorContains)

				var statusErr *httpclient.StatusError
				assert.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.status, statusErr.Status)
				assert.Equal(t, tt.body, string(statusErr.Body))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.body, string(body))
			}
		})
	}
}

func TestStatusErrorNotFound(t *testing.T) {
	notFound := &httpclient.StatusError{Status: http.StatusNotFound}
	assert.True(t, notFound.NotFound())

	serverErr := &httpclient.StatusError{Status: http.StatusInternalServerError}
	assert.False(t, serverErr.NotFound())
}
