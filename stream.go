package chatstream

import (
	"io"
	"iter"
)

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, chunks are arriving.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// String returns a lowercase name for the state.
func (s StreamState) String() string {
	switch s {
	case StreamStateNew:
		return "new"
	case StreamStateStreaming:
		return "streaming"
	case StreamStateComplete:
		return "complete"
	case StreamStateError:
		return "error"
	case StreamStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stream is a pull-based sequence of decoded chat completion chunks.
// Cancellation flows through the context passed when the stream was opened.
//
// Next returns chunks strictly in arrival order. It returns io.EOF once the
// server has finished and every buffered frame was delivered. Any other
// error is terminal: subsequent calls return the same error.
//
// Message returns the completion assembled from the chunks delivered so far:
//   - StreamStateNew: zero value and ErrStreamNotReady.
//   - StreamStateStreaming, StreamStateError, StreamStateClosed: partial
//     completion, nil error.
//   - StreamStateComplete: complete completion, nil error.
type Stream interface {
	Next() (ChatCompletionChunk, error)
	State() StreamState
	Message() (ChatCompletion, error)
	Close() error
}

// Chunks adapts s to a range-over-func sequence. Iteration stops after the
// first error, which is yielded alongside a zero chunk. io.EOF is not
// yielded. Chunks does not close s.
func Chunks(s Stream) iter.Seq2[ChatCompletionChunk, error] {
	return func(yield func(ChatCompletionChunk, error) bool) {
		for {
			chunk, err := s.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(ChatCompletionChunk{}, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}
