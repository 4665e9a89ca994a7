package mock

import "github.com/fwojciec/chatstream/sse"

// Interface compliance check.
var _ sse.Source = (*Source)(nil)

// closed is always ready.
var closed = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Source is a test double for sse.Source.
// ChunkFn panics when nil. ReadyFn defaults to an always-ready channel so a
// driven stream never blocks; CloseFn defaults to a no-op.
type Source struct {
	ChunkFn func() ([]byte, error)
	ReadyFn func() <-chan struct{}
	CloseFn func() error
}

// Chunk delegates to ChunkFn.
func (s *Source) Chunk() ([]byte, error) {
	return s.ChunkFn()
}

// Ready delegates to ReadyFn. Returns a closed channel when ReadyFn is nil.
func (s *Source) Ready() <-chan struct{} {
	if s.ReadyFn == nil {
		return closed
	}
	return s.ReadyFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Source) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
