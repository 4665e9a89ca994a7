// Package fs gathers local files matched by glob patterns so their contents
// can be attached to a chat prompt. Patterns support ** for recursive
// matching.
package fs

import "errors"

// DefaultMaxBytes is the per-file size limit used when none is given.
const DefaultMaxBytes = 256 << 10

var (
	// ErrNoMatch indicates a pattern matched no regular file.
	ErrNoMatch = errors.New("no files match")

	// ErrTooLarge indicates a matched file exceeds the size limit.
	ErrTooLarge = errors.New("file too large")

	// ErrNotText indicates a matched file is not valid UTF-8.
	ErrNotText = errors.New("not a text file")
)
