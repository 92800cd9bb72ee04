package httpapi

import (
	"net/http"

	"arbridge/internal/codec"
	"arbridge/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusByCode maps error kind codes to HTTP status codes.
var statusByCode = map[string]int{
	"NOT_SUPPORTED":    http.StatusServiceUnavailable,
	"INVALID_STATE":    http.StatusConflict,
	"INVALID_ARGUMENT": http.StatusBadRequest,
	"NOT_FOUND":        http.StatusNotFound,
	"NOT_TRACKING":     http.StatusConflict,
	"CANCELLED":        http.StatusConflict,
	"DISPOSED":         http.StatusGone,
	"RUNTIME_FAILURE":  http.StatusBadGateway,
}

// callError adapts the error half of a call response to HTTPError.
type callError struct{ e *types.CallError }

func (c callError) Error() string { return c.e.Message }

func (c callError) StatusCode() int {
	if s, ok := statusByCode[c.e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// statusFor returns the HTTP status for a call response.
func statusFor(resp types.CallResponse) int {
	switch {
	case resp.NotImplemented:
		return http.StatusNotImplemented
	case resp.Error != nil:
		return callError{resp.Error}.StatusCode()
	}
	return http.StatusOK
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeError(w, codec.JSON, status, msg)
}

// writeError writes a transport-level error payload with the given codec.
func writeError(w http.ResponseWriter, c codec.Codec, status int, msg string) {
	writeValue(w, c, status, types.ErrorResponse{Error: msg, Code: status})
}

func writeValue(w http.ResponseWriter, c codec.Codec, status int, v any) {
	b, err := c.Marshal(v)
	if err != nil {
		c = codec.JSON
		status = http.StatusInternalServerError
		b, _ = c.Marshal(types.ErrorResponse{Error: "failed to encode response", Code: status})
	}
	w.Header().Set("Content-Type", c.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
