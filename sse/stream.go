package sse

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/chatstream"
)

// Interface compliance check.
var _ chatstream.Stream = (*Stream)(nil)

// Stream implements [chatstream.Stream] by driving an Assembler. Next blocks
// only while the assembler is Pending and the source has nothing ready.
type Stream struct {
	ctx   context.Context
	src   Source
	asm   *Assembler
	state chatstream.StreamState
	acc   chatstream.Accumulator
	err   error // terminal error, if any
}

// NewStream returns a Stream decoding src. Cancelling ctx terminates the
// stream with the context's error.
func NewStream(ctx context.Context, src Source, opts ...Option) *Stream {
	return &Stream{
		ctx:   ctx,
		src:   src,
		asm:   NewAssembler(src, opts...),
		state: chatstream.StreamStateNew,
	}
}

// Next returns the next decoded chunk. It returns io.EOF when the stream
// completes normally.
func (s *Stream) Next() (chatstream.ChatCompletionChunk, error) {
	switch s.state {
	case chatstream.StreamStateComplete:
		return chatstream.ChatCompletionChunk{}, io.EOF
	case chatstream.StreamStateError:
		return chatstream.ChatCompletionChunk{}, s.err
	case chatstream.StreamStateClosed:
		return chatstream.ChatCompletionChunk{}, fmt.Errorf("sse: %w", chatstream.ErrStreamClosed)
	}

	for {
		if err := s.ctx.Err(); err != nil {
			s.terminate(fmt.Errorf("sse: %w", err))
			return chatstream.ChatCompletionChunk{}, s.err
		}

		r := s.asm.Poll()
		switch r.Outcome {
		case Produced:
			s.state = chatstream.StreamStateStreaming
			s.acc.Add(r.Chunk)
			return r.Chunk, nil
		case Done:
			s.state = chatstream.StreamStateComplete
			s.release()
			return chatstream.ChatCompletionChunk{}, io.EOF
		case Failed:
			s.terminate(r.Err)
			return chatstream.ChatCompletionChunk{}, s.err
		}

		if r.Again {
			continue
		}
		select {
		case <-s.src.Ready():
		case <-s.ctx.Done():
		}
	}
}

// State returns the current stream state.
func (s *Stream) State() chatstream.StreamState {
	return s.state
}

// Message returns the completion assembled from the chunks delivered so far.
func (s *Stream) Message() (chatstream.ChatCompletion, error) {
	if s.state == chatstream.StreamStateNew {
		return chatstream.ChatCompletion{}, fmt.Errorf("sse: %w", chatstream.ErrStreamNotReady)
	}
	return s.acc.Completion(), nil
}

// Close releases the source. A stream closed before reaching a terminal
// state rejects further Next calls.
func (s *Stream) Close() error {
	if s.state != chatstream.StreamStateComplete && s.state != chatstream.StreamStateError {
		s.state = chatstream.StreamStateClosed
	}
	return s.src.Close()
}

func (s *Stream) terminate(err error) {
	s.state = chatstream.StreamStateError
	s.err = err
	s.release()
}

// release closes the source once the stream reaches a terminal state. Next
// has already returned the outcome, so a close failure is only logged.
func (s *Stream) release() {
	if err := s.src.Close(); err != nil {
		s.asm.logger.Debug("sse: close source", "error", err)
	}
}
