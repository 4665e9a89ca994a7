// Package sse decodes a chat completion server-sent-events byte stream into
// [chatstream.ChatCompletionChunk] values.
//
// The [Assembler] is a non-blocking state machine: each Poll appends at most
// one transport chunk to its buffer and yields at most one frame. [Stream]
// drives an Assembler to implement the pull-based [chatstream.Stream].
package sse

import "errors"

const (
	separator  = "\n\n"
	dataPrefix = "data:"
	doneMarker = "[DONE]"
)

// ErrNoChunk is returned by [Source.Chunk] when no bytes have arrived yet.
var ErrNoChunk = errors.New("sse: no chunk available")
