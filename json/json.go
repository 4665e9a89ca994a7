// Package json persists [chatstream.Conversation] values as JSON files so a
// chat can be resumed across runs.
package json

// envelopeVersion is the only on-disk format understood by this package.
const envelopeVersion = 1
