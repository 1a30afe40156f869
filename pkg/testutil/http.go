// Package testutil provides common helpers for handler and integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the wire format every endpoint uses.
type Envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewJSONRequest creates an HTTP request with a JSON-marshaled body.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewRequest creates a simple HTTP request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// NewRequestWithBody creates an HTTP request with a raw string body.
func NewRequestWithBody(t *testing.T, method, path string, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// ReadBody reads the response body as bytes.
func ReadBody(t *testing.T, rr *httptest.ResponseRecorder) []byte {
	t.Helper()
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err, "failed to read response body")
	return body
}

// DecodeEnvelope unmarshals the response envelope.
func DecodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(ReadBody(t, rr), &env), "failed to unmarshal envelope")
	return env
}

// DecodeData unmarshals the envelope's data payload into T. Fails the test if
// the envelope reports failure.
func DecodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	env := DecodeEnvelope(t, rr)
	require.True(t, env.Status, "expected success envelope, got message %q", env.Message)
	var result T
	require.NoError(t, json.Unmarshal(env.Data, &result), "failed to unmarshal data payload")
	return result
}

// AssertStatus asserts the response status code matches expected.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code")
}

// AssertStatusOK asserts the response status is 200 OK.
func AssertStatusOK(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	AssertStatus(t, rr, http.StatusOK)
}

// AssertFailure asserts the response carries a failure envelope with the given
// HTTP status, and returns its message.
func AssertFailure(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int) string {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	env := DecodeEnvelope(t, rr)
	assert.False(t, env.Status, "expected failure envelope")
	return env.Message
}

// AssertFailureMessage asserts status, failure envelope, and exact message.
func AssertFailureMessage(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()
	message := AssertFailure(t, rr, expectedStatus)
	assert.Equal(t, expectedMessage, message, "unexpected failure message")
}
