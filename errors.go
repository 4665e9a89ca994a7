package chatstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates request arguments failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamNotReady indicates Message() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrTransport indicates the byte stream failed underneath the decoder:
	// a connection error, a timeout or bytes that are not UTF-8.
	ErrTransport = errors.New("transport error")

	// ErrDecode indicates a complete frame whose payload is not valid JSON
	// for a chat completion chunk.
	ErrDecode = errors.New("decode error")

	// ErrUnexpectedEOF indicates the transport closed in the middle of a frame.
	ErrUnexpectedEOF = errors.New("unexpected end of stream")

	// ErrNoAPIKey indicates a provider that requires a key was given none.
	ErrNoAPIKey = errors.New("no API key")
)

// APIError is returned when the server answers with a non-2xx status.
// Body holds the raw response text; Message, Type and Code are filled when
// the body is an OpenAI-style error envelope.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "" && e.Type != "":
		return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Type, e.Message)
	case e.Message != "":
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	case e.Body != "":
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
}
