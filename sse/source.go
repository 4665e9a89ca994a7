package sse

import (
	"io"
	"sync"
)

// Source is the transport side of a stream. Implementations are used by a
// single Assembler and need not be safe for concurrent Chunk calls.
type Source interface {
	// Chunk returns the next raw chunk without blocking. It returns
	// ErrNoChunk when nothing has arrived yet, io.EOF once the transport
	// closed cleanly, and any other error for a transport failure. After
	// io.EOF or an error every call returns the same error.
	Chunk() ([]byte, error)

	// Ready is signalled whenever Chunk may return something other than
	// ErrNoChunk. Spurious signals are allowed.
	Ready() <-chan struct{}

	// Close releases the transport.
	Close() error
}

// Interface compliance check.
var _ Source = (*ReaderSource)(nil)

// DefaultReadSize is the read buffer size used by ReaderSource.
const DefaultReadSize = 4096

// ReaderSource adapts a blocking io.ReadCloser such as an HTTP response body
// to a Source. A background goroutine performs the reads; Chunk only
// inspects what it has delivered.
type ReaderSource struct {
	body  io.ReadCloser
	items chan readResult
	ready chan struct{}
	done  chan struct{}
	err   error // terminal, once observed by Chunk

	closeOnce sync.Once
	closeErr  error
}

type readResult struct {
	data []byte
	err  error
}

// NewReaderSource starts reading body in the background with reads of at
// most size bytes. A size <= 0 selects DefaultReadSize.
func NewReaderSource(body io.ReadCloser, size int) *ReaderSource {
	if size <= 0 {
		size = DefaultReadSize
	}
	s := &ReaderSource{
		body:  body,
		items: make(chan readResult, 16),
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go s.read(size)
	return s
}

func (s *ReaderSource) read(size int) {
	buf := make([]byte, size)
	for {
		n, err := s.body.Read(buf)
		if n > 0 {
			// buf is reused by the next Read.
			data := make([]byte, n)
			copy(data, buf[:n])
			if !s.send(readResult{data: data}) {
				return
			}
		}
		if err != nil {
			s.send(readResult{err: err})
			return
		}
	}
}

func (s *ReaderSource) send(r readResult) bool {
	select {
	case s.items <- r:
	case <-s.done:
		return false
	}
	select {
	case s.ready <- struct{}{}:
	default:
	}
	return true
}

// Chunk implements Source.
func (s *ReaderSource) Chunk() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	select {
	case r := <-s.items:
		if r.err != nil {
			s.err = r.err
			return nil, s.err
		}
		return r.data, nil
	default:
		return nil, ErrNoChunk
	}
}

// Ready implements Source.
func (s *ReaderSource) Ready() <-chan struct{} {
	return s.ready
}

// Close stops the background reader and closes the body. It is safe to
// call more than once.
func (s *ReaderSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
