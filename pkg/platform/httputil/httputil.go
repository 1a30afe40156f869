// Package httputil provides the JSON envelope shared by every endpoint.
// Successful responses carry {"status": true, ...}; failures carry
// {"status": false, "message": "..."}.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "locality/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Envelope is the uniform response wrapper.
type Envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes a success envelope with the given payload under "data".
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Status: true, Data: data})
}

// WriteMessage writes a success envelope with a human-readable message and no
// payload.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Status: true, Message: message})
}

// WriteError maps a domain error to its HTTP status and writes a failure
// envelope. Internal errors get a generic message so details never leak.
func WriteError(w http.ResponseWriter, err error) {
	status := dErrors.ToHTTPStatus(dErrors.CodeOf(err))
	message := "internal server error"
	var dErr *dErrors.Error
	if errors.As(err, &dErr) && dErr.Code != dErrors.CodeInternal {
		message = dErr.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Status: false, Message: message})
}

// Validatable is implemented by request bodies that validate and normalize
// themselves after decoding.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the request body into T, runs its validation, and
// writes the error response itself on failure. The boolean reports whether
// the handler should continue.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (PT, bool) {
	var req T
	p := PT(&req)
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(p); err != nil && !errors.Is(err, io.EOF) {
		logger.WarnContext(ctx, "request decode failed", "request_id", requestID, "error", err)
		WriteError(w, dErrors.New(dErrors.CodeValidation, "request body must be valid JSON"))
		return nil, false
	}
	if err := p.Validate(); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return p, true
}
