package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// StatusError reports a response whose status code was outside the
// expected set for the request. The response body is kept as the
// diagnostic payload.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatusCode
}

func (e *StatusError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// ReadBody drains the response body and returns it when the status code
// is one of the expected ones. Any other status yields a *StatusError
// carrying the body.
func ReadBody(resp *http.Response, method, url string, expected ...int) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	for _, status := range expected {
		if resp.StatusCode == status {
			return body, nil
		}
	}

	return nil, &StatusError{
		Method: method,
		URL:    url,
		Status: resp.StatusCode,
		Body:   body,
	}
}
