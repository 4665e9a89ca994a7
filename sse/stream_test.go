package sse_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/mock"
	"github.com/fwojciec/chatstream/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	roleFrame = `data: {"id":"x","object":"chat.completion.chunk","created":1700000000,"model":"gpt-4o","choices":[{"delta":{"role":"assistant","content":""},"index":0,"finish_reason":null}]}` + "\n\n"
	usageFrame = `data: {"id":"x","object":"chat.completion.chunk","created":1700000000,"model":"gpt-4o","choices":[],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}` + "\n\n"
)

func TestStream_ReadsUntilEOF(t *testing.T) {
	t.Parallel()
	body := roleFrame + sseFrame(t, "x", "Hel") + sseFrame(t, "x", "lo") + finalFrame + usageFrame + "data: [DONE]\n\n"
	s := sse.NewStream(context.Background(), sse.NewReaderSource(io.NopCloser(strings.NewReader(body)), 7))

	assert.Equal(t, chatstream.StreamStateNew, s.State())
	_, err := s.Message()
	assert.ErrorIs(t, err, chatstream.ErrStreamNotReady)

	var text strings.Builder
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, chatstream.StreamStateStreaming, s.State())
		text.WriteString(chunk.Content())
	}
	assert.Equal(t, "Hello", text.String())
	assert.Equal(t, chatstream.StreamStateComplete, s.State())

	// Completion is idempotent.
	_, err = s.Next()
	assert.Equal(t, io.EOF, err)

	msg, err := s.Message()
	require.NoError(t, err)
	assert.Equal(t, "x", msg.ID)
	assert.Equal(t, "chat.completion", msg.Object)
	assert.Equal(t, "gpt-4o", msg.Model)
	require.Len(t, msg.Choices, 1)
	assert.Equal(t, chatstream.RoleAssistant, msg.Choices[0].Message.Role)
	assert.Equal(t, "Hello", msg.Choices[0].Message.Content)
	assert.Equal(t, "stop", msg.Choices[0].FinishReason)
	assert.Equal(t, 7, msg.Usage.TotalTokens)

	require.NoError(t, s.Close())
	assert.Equal(t, chatstream.StreamStateComplete, s.State())
}

func TestStream_DecodeErrorIsTerminal(t *testing.T) {
	t.Parallel()
	body := sseFrame(t, "x", "ok") + "data: {broken\n\n"
	s := sse.NewStream(context.Background(), scripted(body))

	chunk, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "ok", chunk.Content())

	_, err = s.Next()
	assert.ErrorIs(t, err, chatstream.ErrDecode)
	assert.Equal(t, chatstream.StreamStateError, s.State())

	_, again := s.Next()
	assert.Equal(t, err, again)

	// Partial content stays available.
	msg, err := s.Message()
	require.NoError(t, err)
	assert.Equal(t, "ok", msg.Choices[0].Message.Content)
}

func TestStream_ClosesSourceOnTerminalState(t *testing.T) {
	t.Parallel()
	closed := 0
	src := scripted(sseFrame(t, "x", "a"))
	src.CloseFn = func() error {
		closed++
		return nil
	}
	s := sse.NewStream(context.Background(), src)

	_, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	_, err = s.Next()
	require.Equal(t, io.EOF, err)
	assert.Equal(t, 1, closed)
}

func TestStream_LogsSourceCloseError(t *testing.T) {
	t.Parallel()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	src := scripted(sseFrame(t, "x", "a"), "data: [DONE]\n\n")
	src.CloseFn = func() error { return errors.New("close boom") }
	s := sse.NewStream(context.Background(), src, sse.WithLogger(logger))

	_, err := s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	require.Equal(t, io.EOF, err)
	assert.Equal(t, chatstream.StreamStateComplete, s.State())
	assert.Contains(t, logs.String(), "sse: close source")
	assert.Contains(t, logs.String(), "close boom")

	// An explicit Close reports the error to the caller.
	assert.EqualError(t, s.Close(), "close boom")
}

func TestStream_CloseBeforeEnd(t *testing.T) {
	t.Parallel()
	pr, pw := io.Pipe()
	s := sse.NewStream(context.Background(), sse.NewReaderSource(pr, 0))

	go func() {
		_, _ = pw.Write([]byte(sseFrame(t, "x", "first")))
	}()
	chunk, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "first", chunk.Content())

	require.NoError(t, s.Close())
	assert.Equal(t, chatstream.StreamStateClosed, s.State())

	_, err = s.Next()
	assert.ErrorIs(t, err, chatstream.ErrStreamClosed)

	// Writes fail once the reader is closed.
	_, err = pw.Write([]byte("data: {}\n\n"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestStream_ContextCancelledBeforeNext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := sse.NewStream(ctx, scripted(sseFrame(t, "x", "never")))

	_, err := s.Next()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, chatstream.StreamStateError, s.State())
}

func TestStream_ContextCancelledWhileWaiting(t *testing.T) {
	t.Parallel()
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	s := sse.NewStream(ctx, sse.NewReaderSource(pr, 0))

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := s.Next()
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Next did not return after cancellation")
	}
}

func TestStream_TransportError(t *testing.T) {
	t.Parallel()
	pr, pw := io.Pipe()
	s := sse.NewStream(context.Background(), sse.NewReaderSource(pr, 0))

	boom := errors.New("stream reset")
	go func() {
		_, _ = pw.Write([]byte(sseFrame(t, "x", "partial")))
		pw.CloseWithError(boom)
	}()

	chunk, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "partial", chunk.Content())

	_, err = s.Next()
	assert.ErrorIs(t, err, chatstream.ErrTransport)
	assert.ErrorIs(t, err, boom)
}

func TestStream_UnexpectedEOF(t *testing.T) {
	t.Parallel()
	body := `data: {"id":"x","choices":[`
	s := sse.NewStream(context.Background(), sse.NewReaderSource(io.NopCloser(strings.NewReader(body)), 0))

	_, err := s.Next()
	assert.ErrorIs(t, err, chatstream.ErrUnexpectedEOF)
}

func TestStream_Chunks(t *testing.T) {
	t.Parallel()
	body := sseFrame(t, "x", "a") + sseFrame(t, "x", "b") + "data: [DONE]\n\n"
	s := sse.NewStream(context.Background(), scripted(body))

	var got []string
	for chunk, err := range chatstream.Chunks(s) {
		require.NoError(t, err)
		got = append(got, chunk.Content())
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestStream_ChunksYieldsError(t *testing.T) {
	t.Parallel()
	s := sse.NewStream(context.Background(), &mock.Source{
		ChunkFn: func() ([]byte, error) { return nil, errors.New("down") },
	})

	var errs []error
	for _, err := range chatstream.Chunks(s) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], chatstream.ErrTransport)
}
