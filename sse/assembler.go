package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/fwojciec/chatstream"
)

// Outcome is the result kind of a single Poll.
type Outcome int

const (
	Pending  Outcome = iota // No complete frame yet.
	Produced                // One frame was decoded.
	Done                    // Transport closed and nothing is left to decode.
	Failed                  // Terminal transport or decode failure.
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Produced:
		return "produced"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is returned by Assembler.Poll.
type Result struct {
	Outcome Outcome
	Chunk   chatstream.ChatCompletionChunk // set when Outcome is Produced
	Err     error                          // set when Outcome is Failed

	// Again reports that another Poll can make progress without waiting
	// for the source: the next frame is already complete in the buffer
	// (Produced), or bytes were just appended and the source may hold more
	// (Pending). When Again is false on Pending, wait for Source.Ready.
	Again bool
}

// Option configures an Assembler or a Stream.
type Option func(*Assembler)

// WithLogger sets the logger used to report discarded segments.
// By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// Assembler reconstructs SSE data frames from arbitrarily fragmented chunks
// and decodes each into a chat completion chunk. It exclusively owns its
// buffer and its source; it is not safe for concurrent use.
//
// The buffer only ever holds bytes that have not been yielded: each frame is
// removed before the Poll that decoded it returns.
type Assembler struct {
	src    Source
	buf    []byte
	eof    bool
	final  *Result
	logger *slog.Logger
}

// NewAssembler returns an Assembler reading from src.
func NewAssembler(src Source, opts ...Option) *Assembler {
	a := &Assembler{
		src:    src,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Poll advances the stream by at most one transport chunk and yields at most
// one frame. It never blocks. Once Done or Failed is returned, every later
// call returns the same result.
func (a *Assembler) Poll() Result {
	if a.final != nil {
		return *a.final
	}
	if a.eof {
		return a.finish()
	}
	if r, ok := a.decode(); ok {
		return r
	}

	chunk, err := a.src.Chunk()
	switch {
	case err == nil:
	case errors.Is(err, ErrNoChunk):
		return Result{Outcome: Pending}
	case err == io.EOF:
		a.eof = true
		return a.finish()
	default:
		return a.fail(fmt.Errorf("sse: %w: %w", chatstream.ErrTransport, err))
	}

	a.buf = append(a.buf, chunk...)
	if r, ok := a.decode(); ok {
		return r
	}
	return Result{Outcome: Pending, Again: true}
}

// Buffered returns the number of undecoded bytes held.
func (a *Assembler) Buffered() int {
	return len(a.buf)
}

// decode yields the first complete frame in the buffer, if any.
func (a *Assembler) decode() (Result, bool) {
	f := nextFrame(a.buf, a.eof)
	if f.start > 0 {
		a.logger.Debug("sse: discarded segments without data field", "bytes", f.start)
	}

	switch f.kind {
	case frameNone:
		a.consume(f.end)
		return Result{}, false
	case frameDone:
		a.consume(f.end)
		return a.terminate(Result{Outcome: Done}), true
	}

	if !utf8.Valid(f.payload) {
		return a.fail(fmt.Errorf("sse: %w: frame is not valid UTF-8", chatstream.ErrTransport)), true
	}
	chunk, err := decodeChunk(f.payload)
	if err != nil {
		return a.fail(err), true
	}

	again := nextFrame(a.buf[f.end:], a.eof).kind != frameNone
	// payload aliases buf, so the frame is removed only after decoding.
	a.consume(f.end)
	return Result{Outcome: Produced, Chunk: chunk, Again: again}, true
}

// finish drains the buffer after the transport reached EOF.
func (a *Assembler) finish() Result {
	if r, ok := a.decode(); ok {
		return r
	}
	if len(bytes.TrimSpace(a.buf)) == 0 {
		return a.terminate(Result{Outcome: Done})
	}
	return a.fail(fmt.Errorf("sse: %w: %d bytes of incomplete frame", chatstream.ErrUnexpectedEOF, len(a.buf)))
}

func (a *Assembler) consume(n int) {
	if n == 0 {
		return
	}
	m := copy(a.buf, a.buf[n:])
	a.buf = a.buf[:m]
}

func (a *Assembler) fail(err error) Result {
	return a.terminate(Result{Outcome: Failed, Err: err})
}

func (a *Assembler) terminate(r Result) Result {
	a.final = &r
	a.buf = nil
	return r
}

// chunkShape marks which required fields a payload carries. A nil pointer
// is a field that is absent or null.
type chunkShape struct {
	ID      *string        `json:"id"`
	Created *int64         `json:"created"`
	Model   *string        `json:"model"`
	Choices *[]choiceShape `json:"choices"`
}

type choiceShape struct {
	Delta *chatstream.Delta `json:"delta"`
	Index *int              `json:"index"`
}

// missing returns the first required field absent from s, or "".
func (s chunkShape) missing() string {
	switch {
	case s.ID == nil:
		return "id"
	case s.Created == nil:
		return "created"
	case s.Model == nil:
		return "model"
	case s.Choices == nil:
		return "choices"
	}
	for i, c := range *s.Choices {
		switch {
		case c.Delta == nil:
			return fmt.Sprintf("choices[%d].delta", i)
		case c.Index == nil:
			return fmt.Sprintf("choices[%d].index", i)
		}
	}
	return ""
}

// decodeChunk unmarshals a data payload into a chunk. Any JSON object
// unmarshals without error, so error envelopes and empty objects are
// rejected by checking the required fields explicitly.
func decodeChunk(p []byte) (chatstream.ChatCompletionChunk, error) {
	var chunk chatstream.ChatCompletionChunk
	if err := json.Unmarshal(p, &chunk); err != nil {
		return chatstream.ChatCompletionChunk{}, fmt.Errorf("sse: %w: %w", chatstream.ErrDecode, err)
	}
	var shape chunkShape
	if err := json.Unmarshal(p, &shape); err != nil {
		return chatstream.ChatCompletionChunk{}, fmt.Errorf("sse: %w: %w", chatstream.ErrDecode, err)
	}
	if field := shape.missing(); field != "" {
		return chatstream.ChatCompletionChunk{}, fmt.Errorf("sse: %w: missing field %q", chatstream.ErrDecode, field)
	}
	return chunk, nil
}
